// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package supervisor runs the storefront's long-lived services under a suture v4
supervisor tree.

	RootSupervisor ("storefront")
	├── DataSupervisor ("data-layer")
	│   ├── profile store compactor
	│   └── embedding index syncer (if the embedding service is enabled)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── embedded NATS server (if events.embedded_server)
	│   └── event router
	└── APISupervisor ("api-layer")
	    └── HTTP server

Each layer counts failures on its own, so a crashing event router is
restarted with backoff while the HTTP server keeps answering recommendation
requests from the catalog.

Supervisor events are logged through sutureslog on an slog.Logger; the
server passes logging.NewSlogLogger so they land in the zerolog output.

Service wrappers that adapt Start/Stop, Run and ListenAndServe lifecycles to
suture.Service live in the services subpackage.
*/
package supervisor
