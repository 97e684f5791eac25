// Package shutdown provides graceful shutdown for cardchat-server.
//
// Hooks run in reverse registration order once SIGINT or SIGTERM arrives,
// or once the context passed to WaitContext is cancelled (for example when
// the HTTP listener fails). All hooks share one deadline.
//
// Usage:
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown("http", srv.Shutdown)
//	h.OnShutdown("store", func(context.Context) error { return store.Close() })
//	err := h.WaitContext(ctx)
package shutdown
