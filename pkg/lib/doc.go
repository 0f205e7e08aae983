// Package lib provides a Go SDK to manage and activate provisioning steps programmatically.
//
// This package allows applications to import, activate and inspect steps
// without shelling out to the activator CLI binary. It is useful for
// scripting, automation, and building tools on top of activator.
//
// # Quick Start
//
// Create a client, import a steps file and activate a step:
//
//	client, err := lib.New(ctx, lib.Config{
//	    Headers: map[string]string{"Authorization": "Bearer " + token},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Store the steps of a file in the registry.
//	_, err = client.ImportSteps(ctx, "steps.yaml", map[string]string{"ACCOUNT": "acme"})
//
//	// Activate a step and follow its progress.
//	res, err := client.Activate(ctx, "test-account", &lib.ActivateOpts{
//	    OnState: func(s lib.ActivationState) {
//	        fmt.Printf("%s %d%%\n", s.Phase, s.Progress)
//	    },
//	})
//	fmt.Println(res.State.Phase)
//
// # Activation
//
// An activation cleans a previously failed step, initializes it and polls its
// job until the server reports it as completed. The polling slows down the
// longer the job takes. [Client.Activate] blocks until the activation succeeds,
// fails or is blocked, a failed activation can be retried with
// [ActivateOpts].RetryPrompt. Cancel the context to stop the activation.
//
// Every activation attempt is recorded, use [Client.GetStep] to get them.
//
// # Backends
//
// The SDK supports two backend types:
//
//   - [BackendREST]: The step actions are JSON HTTP endpoints of the provisioning
//     server. Use [Config].Headers for authentication.
//   - [BackendFake]: In-memory fake backend for unit testing. No server is needed.
//     Set [Config].Backend to [BackendFake] to use it.
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: Step does not exist.
//   - [ErrNotValid]: Invalid input or operation (e.g. removing a step in progress).
//   - [ErrActionMissing]: The step has no remote action for the operation.
//
// # Testing
//
// Use [BackendFake], short [Timings] and a temporary database path to write
// tests without a provisioning server:
//
//	client, _ := lib.New(ctx, lib.Config{
//	    DBPath:  filepath.Join(t.TempDir(), "test.db"),
//	    Backend: lib.BackendFake,
//	    Timings: lib.Timings{FastInterval: time.Millisecond, SettleDelay: time.Millisecond},
//	})
//	defer client.Close()
//
// # Thread Safety
//
// A [Client] is safe for concurrent use from multiple goroutines. The underlying
// storage uses SQLite with WAL mode, and every activation runs its own turn queue.
package lib
