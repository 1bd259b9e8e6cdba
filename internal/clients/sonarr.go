package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/JustinTDCT/PosterVault/internal/titles"
)

// SonarrClient fetches the series library of one Sonarr instance over its v3
// API.
type SonarrClient struct {
	instance string
	api      *apiClient
}

func NewSonarrClient(instance, baseURL, apiKey string) *SonarrClient {
	return &SonarrClient{
		instance: instance,
		api:      newAPIClient(baseURL, map[string]string{"X-Api-Key": apiKey}),
	}
}

func (c *SonarrClient) Instance() string { return c.instance }

type sonarrSeries struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	AlternateTitles []struct {
		Title string `json:"title"`
	} `json:"alternateTitles"`
	Year       int    `json:"year"`
	Path       string `json:"path"`
	RootFolder string `json:"rootFolderPath"`
	TVDBID     int    `json:"tvdbId"`
	IMDBID     string `json:"imdbId"`
	Monitored  bool   `json:"monitored"`
	Seasons    []struct {
		SeasonNumber int  `json:"seasonNumber"`
		Monitored    bool `json:"monitored"`
	} `json:"seasons"`
	Tags []int `json:"tags"`
}

// Series returns every series of the instance as a MediaRecord, including
// per-season monitoring state.
func (c *SonarrClient) Series(ctx context.Context) ([]*models.MediaRecord, error) {
	var series []sonarrSeries
	if err := c.api.getJSON(ctx, "/api/v3/series", &series); err != nil {
		return nil, fmt.Errorf("sonarr %s: %w", c.instance, err)
	}

	tagNames, err := c.tagNames(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]*models.MediaRecord, 0, len(series))
	for _, s := range series {
		rec := &models.MediaRecord{
			Type:            models.AssetTypeSeries,
			Title:           s.Title,
			NormalizedTitle: titles.Normalize(s.Title),
			Folder:          s.Path,
			RootFolder:      s.RootFolder,
			InstanceName:    c.instance,
			Monitored:       s.Monitored,
		}
		if s.Year > 0 {
			year := s.Year
			rec.Year = &year
		}
		if s.TVDBID > 0 {
			id := s.TVDBID
			rec.IDs.TVDBID = &id
		}
		if strings.HasPrefix(s.IMDBID, "tt") {
			id := s.IMDBID
			rec.IDs.IMDBID = &id
		}
		for _, alt := range s.AlternateTitles {
			if alt.Title != "" && alt.Title != s.Title {
				rec.AlternateTitles = append(rec.AlternateTitles, alt.Title)
			}
		}
		for _, season := range s.Seasons {
			rec.Seasons = append(rec.Seasons, models.MediaSeason{
				Number:    season.SeasonNumber,
				Monitored: season.Monitored,
			})
		}
		for _, tagID := range s.Tags {
			if name, ok := tagNames[tagID]; ok {
				rec.Tags = append(rec.Tags, name)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *SonarrClient) tagNames(ctx context.Context) (map[int]string, error) {
	var tags []radarrTag
	if err := c.api.getJSON(ctx, "/api/v3/tag", &tags); err != nil {
		return nil, fmt.Errorf("sonarr %s tags: %w", c.instance, err)
	}
	out := make(map[int]string, len(tags))
	for _, t := range tags {
		out[t.ID] = t.Label
	}
	return out, nil
}
