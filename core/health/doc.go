// Package health provides HTTP probes for processes that embed a messenger.
//
// Liveness always answers 200 "ALIVE". Readiness runs dependency checks in order
// and answers 503 on the first failure; Messenger.Healthcheck fits its check signature.
//
//	mux.HandleFunc("GET /health/live", health.Liveness)
//	mux.Handle("GET /health/ready", health.Readiness(log, m.Healthcheck))
package health
