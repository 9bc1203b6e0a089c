package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/akmonengine/looper"
	"github.com/akmonengine/looper/actor"
	"github.com/akmonengine/looper/track"
	"github.com/go-gl/mathgl/mgl64"
)

const dt float64 = 1.0 / 60.0

// SetupScene creates a ground slab, a ball in front of the player and a crate
// that will replay the ball's loop
func SetupScene(logger *slog.Logger) (*looper.World, *looper.Gun, *actor.RigidBody, *actor.RigidBody) {
	world := looper.NewWorld(mgl64.Vec3{0, -9.81, 0})
	world.Logger = logger
	world.RecorderConfig.Logger = logger

	ground := actor.NewRigidBody(
		actor.Transform{Position: mgl64.Vec3{0, -1, 0}},
		&actor.Box{HalfExtents: mgl64.Vec3{50, 1, 50}},
		actor.BodyTypeStatic,
		0.0,
	)
	ground.Id = "ground"
	world.AddBody(ground)

	ball := actor.NewRigidBody(
		actor.Transform{Position: mgl64.Vec3{0, 1.7, -4}},
		&actor.Sphere{Radius: 0.5},
		actor.BodyTypeDynamic,
		1.0,
	)
	ball.Id = "ball"
	world.AddBody(ball)

	crate := actor.NewRigidBody(
		actor.Transform{Position: mgl64.Vec3{6, 1, -4}},
		&actor.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}},
		actor.BodyTypeDynamic,
		1.0,
	)
	crate.Id = "crate"
	crate.IsKinematic = true
	world.AddBody(crate)

	camera := looper.NewCamera(mgl64.Vec3{0, 1.7, 0}, mgl64.Vec3{0, 0, -1}, 1280, 720)
	gun := looper.NewGun(world, camera)

	return world, gun, ball, crate
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	world, gun, ball, crate := SetupScene(logger)

	world.Events.Subscribe(looper.RECORD_START, func(event looper.Event) {
		e := event.(looper.RecordStartEvent)
		logger.Info("recording", "body", e.Body.Id)
	})
	world.Events.Subscribe(looper.RECORD_STOP, func(event looper.Event) {
		e := event.(looper.RecordStopEvent)
		logger.Info("rewinding", "body", e.Body.Id, "keyframes", e.Recorder.Len())
	})
	world.Events.Subscribe(looper.LOOP_COMPLETE, func(event looper.Event) {
		e := event.(looper.LoopCompleteEvent)
		logger.Info("back at start", "body", e.Body.Id, "position", e.Body.Transform.Position)
	})
	world.Events.Subscribe(looper.REVERSE_START, func(event looper.Event) {
		e := event.(looper.ReverseStartEvent)
		logger.Info("end of loop", "body", e.Body.Id, "position", e.Body.Transform.Position)
	})

	// throw the ball, then hold the trigger on it for one second
	ball.Velocity = mgl64.Vec3{2, 4, 0}
	recorder := gun.Press()
	if recorder == nil {
		logger.Error("nothing under the crosshair")
		os.Exit(1)
	}
	for step := 0; step < 60; step++ {
		world.Step(dt)
	}
	gun.Release()

	for step := 0; step < 240; step++ {
		world.Step(dt)
		if step%30 == 0 {
			fmt.Printf("step %3d  ball %v  state %v  cursor %d/%d\n",
				step, ball.Transform.Position, recorder.State(), recorder.Cursor(), recorder.Len())
		}
	}

	// save the loop and replay it on the crate through a watched directory
	dir, err := os.MkdirTemp("", "looper")
	if err != nil {
		logger.Error("temp dir", "error", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	watcher, err := track.NewWatcher(dir)
	if err != nil {
		logger.Error("watch", "error", err)
		os.Exit(1)
	}
	defer watcher.Close()

	path := filepath.Join(dir, "ball.yaml")
	if err := track.SaveTrackFile(path, recorder.Track()); err != nil {
		logger.Error("save", "error", err)
		os.Exit(1)
	}

	select {
	case reload := <-watcher.Events:
		fingerprint, _ := reload.Track.Fingerprint()
		logger.Info("track reloaded", "path", reload.Path, "fingerprint", fingerprint)

		crateRecorder := world.AttachRecorder(crate)
		if err := crateRecorder.LoadTrack(reload.Track); err != nil {
			logger.Error("load", "error", err)
			os.Exit(1)
		}
	case err := <-watcher.Errors:
		logger.Error("watch", "error", err)
		os.Exit(1)
	case <-time.After(2 * time.Second):
		logger.Warn("no reload seen")
	}

	for step := 0; step < 180; step++ {
		world.Step(dt)
	}

	// R: drop the loop closest to the crosshair
	gun.DetachNearest()
	fmt.Printf("ball after detach: %v kinematic=%v\n", ball.Transform.Position, ball.IsKinematic)
}
