// Package coordinator keeps the latest known state of one device.
//
// A refresh cycle reads control info, sensor info and unit status one after
// another and, only if all three succeed, replaces the current Snapshot.
// A failed cycle leaves the previous snapshot in place and moves the
// coordinator to StateFailed with the fault attached.
//
//	idle ──► refreshing ──► ready
//	              │  ▲        │
//	              ▼  └────────┘
//	            failed ◄──────┘
//
// Concurrent RequestRefresh calls share one in-flight cycle
// (golang.org/x/sync/singleflight) and all receive the same Update.
// Observers registered with Subscribe are told about every completed cycle.
//
// # Usage Example
//
//	client := deviceclient.NewClient(host, nil, deviceclient.WithLogger(logger))
//	coord := coordinator.New(client, coordinator.WithLogger(logger))
//
//	id := coord.Subscribe(func(u coordinator.Update) {
//	    if u.OK() {
//	        fmt.Println(u.Snapshot.ControlInfo().Mode.Name())
//	    }
//	})
//	defer coord.Unsubscribe(id)
//
//	go coord.Run(ctx, 30*time.Second)
//
// # Thread Safety
//
// All methods are safe for concurrent use. Snapshots are immutable.
package coordinator
