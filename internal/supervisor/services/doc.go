// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package services adapts storefront components to suture.Service.

  - HTTPServerService: *http.Server, ListenAndServe plus graceful Shutdown
  - WorkerService: Start/Stop background workers such as the profile store
    compactor and the embedding index syncer
  - EmbeddedNATSService: the in-process NATS server, restarted if it dies
  - EventRouterService: the watermill event router, rebuilt on every start
    because a closed router cannot run again

Every wrapper returns ctx.Err() after a requested shutdown and a wrapped
error when the component fails, which tells suture to restart it.
*/
package services
