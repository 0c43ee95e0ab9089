// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

/*
Package supervisor runs VibeStream's long-lived services under a suture v4
supervisor tree.

The tree has two layers below the root:

	vibestream
	├── data-layer   availability worker, store GC
	└── api-layer    HTTP server

Each layer restarts its own services with exponential backoff. A worker
that keeps failing in the data layer never takes the HTTP server down;
sessions keep being served and availability persistence resumes when the
worker recovers.

Services that should not be restarted, such as the availability worker
after its queue closed, return suture.ErrDoNotRestart.

Supervisor events are logged through sutureslog, bridged onto zerolog by
logging.NewSlogLogger.
*/
package supervisor
