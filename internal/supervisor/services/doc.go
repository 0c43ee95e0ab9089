// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

/*
Package services adapts VibeStream components to suture.Service.

HTTPServerService turns http.Server's blocking ListenAndServe into a
context-aware Serve with graceful shutdown. StoreGCService runs the Badger
value log garbage collector on an interval.

The availability worker implements suture.Service itself and needs no
wrapper here.

Every service implements fmt.Stringer so suture's events name it.
*/
package services
