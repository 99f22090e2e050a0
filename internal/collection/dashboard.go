// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package collection

import (
	"context"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/shelfmark/internal/metrics"
	"github.com/tomtom215/shelfmark/internal/models"
	"github.com/tomtom215/shelfmark/internal/view"
)

// DashboardView is everything a collection's landing page shows.
type DashboardView struct {
	Resource   string                      `json:"resource"`
	Recent     []models.Record             `json:"recent"`
	Favourites []models.Record             `json:"favourites"`
	Watchlist  []models.Record             `json:"watchlist"`
	Top        []view.RankedGroup          `json:"top"`
	GroupField string                      `json:"group_field,omitempty"`
	Groups     []view.Group[models.Record] `json:"groups"`
	Summary    view.Summary                `json:"summary"`
	Ownership  view.Ownership              `json:"ownership"`
	Lists      []models.Record             `json:"lists"`
	Degraded   bool                        `json:"degraded,omitempty"`
}

// Dashboard fetches the collection and its related user lists concurrently
// and derives every dashboard section from them. Each fetch writes only its
// own slice. Either fetch failing marks the view degraded; neither cancels
// the other.
func (s *Service) Dashboard(ctx context.Context, resource string) (DashboardView, error) {
	schema, err := s.Schema(resource)
	if err != nil {
		return DashboardView{}, err
	}

	var (
		recs, lists                 []models.Record
		recsDegraded, listsDegraded bool
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		recs, recsDegraded, err = s.fetch(egCtx, resource, nil)
		return err
	})
	if resource != models.ResourceLists {
		eg.Go(func() error {
			params := url.Values{}
			params.Set("category", resource)
			var err error
			lists, listsDegraded, err = s.fetch(egCtx, models.ResourceLists, params)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return DashboardView{}, err
	}
	if lists == nil {
		lists = []models.Record{}
	}

	start := time.Now()
	d := DashboardView{
		Resource:   resource,
		Recent:     []models.Record{},
		Favourites: []models.Record{},
		Watchlist:  []models.Record{},
		Top:        []view.RankedGroup{},
		Groups:     []view.Group[models.Record]{},
		Summary:    view.Summarize(recs, schema.PriceField, nil),
		Ownership:  view.CountOwnership(recs, schema.OwnedField),
		Lists:      lists,
		Degraded:   recsDegraded || listsDegraded,
	}

	sampleSize := orDefault(s.cfg.SampleSize, view.DefaultSampleSize)
	if schema.DateField != "" {
		d.Recent = view.MostRecent(recs, schema.DateField, orDefault(s.cfg.RecentN, sampleSize))
	}
	if schema.FavouriteField != "" {
		d.Favourites = view.Sample(recs, view.FlagSet(schema.FavouriteField), sampleSize, s.rnd)
	}
	if schema.WatchlistField != "" {
		d.Watchlist = view.Sample(recs, view.FlagSet(schema.WatchlistField), sampleSize, s.rnd)
	}
	if schema.RankKey != "" && schema.RatingField != "" {
		d.Top = view.TopN(recs, schema.RankKey, schema.RatingField, s.cfg.TopN)
	}
	if d.GroupField = defaultGroupField(schema); d.GroupField != "" {
		d.Groups = view.GroupByField(recs, d.GroupField).Groups()
	}
	metrics.RecordViewComputation("dashboard", len(recs), time.Since(start))

	return d, nil
}
