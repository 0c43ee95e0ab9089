// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package metadata

import (
	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
)

// PickProvidersForRegion extracts region's watch providers from doc.
//
// Availability lists every (provider, type) pair in flatrate, free, ads,
// rent, buy order. Providers keeps the first occurrence of each provider id.
// Entries without an id or name are skipped. A nil doc or unknown region
// yields an empty result.
func PickProvidersForRegion(doc *WatchProvidersDoc, region, imageBase string) models.WatchProviders {
	out := models.WatchProviders{
		Providers:    []models.WatchProvider{},
		Availability: []models.ProviderAvailability{},
	}
	if doc == nil {
		return out
	}
	rd, ok := doc.Results[region]
	if !ok {
		return out
	}

	lists := map[models.AvailabilityType][]ProviderEntry{
		models.AvailabilityFlatrate: rd.Flatrate,
		models.AvailabilityFree:     rd.Free,
		models.AvailabilityAds:      rd.Ads,
		models.AvailabilityRent:     rd.Rent,
		models.AvailabilityBuy:      rd.Buy,
	}

	seen := make(map[int64]struct{})
	for _, typ := range models.AvailabilityOrder {
		for _, p := range lists[typ] {
			if p.ProviderID == nil || p.ProviderName == "" {
				continue
			}
			wp := models.WatchProvider{
				ProviderID: *p.ProviderID,
				Name:       p.ProviderName,
				LogoURL:    ImageURL(imageBase, "w92", p.LogoPath),
			}
			out.Availability = append(out.Availability, models.ProviderAvailability{
				WatchProvider:    wp,
				AvailabilityType: typ,
			})
			if _, dup := seen[wp.ProviderID]; !dup {
				seen[wp.ProviderID] = struct{}{}
				out.Providers = append(out.Providers, wp)
			}
		}
	}

	out.Link = rd.Link
	return out
}

// ImageURL joins an image CDN root, a size segment and a TMDB file path.
// It returns nil when path is empty.
func ImageURL(base, size, path string) *string {
	if path == "" {
		return nil
	}
	u := base + "/" + size + path
	return &u
}
