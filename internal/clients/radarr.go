package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/JustinTDCT/PosterVault/internal/titles"
)

// RadarrClient fetches the movie library of one Radarr instance over its v3
// API.
type RadarrClient struct {
	instance string
	api      *apiClient
}

func NewRadarrClient(instance, baseURL, apiKey string) *RadarrClient {
	return &RadarrClient{
		instance: instance,
		api:      newAPIClient(baseURL, map[string]string{"X-Api-Key": apiKey}),
	}
}

func (c *RadarrClient) Instance() string { return c.instance }

type radarrMovie struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	OriginalTitle   string `json:"originalTitle"`
	AlternateTitles []struct {
		Title string `json:"title"`
	} `json:"alternateTitles"`
	Year          int    `json:"year"`
	SecondaryYear *int   `json:"secondaryYear"`
	Path          string `json:"path"`
	RootFolder    string `json:"rootFolderPath"`
	TMDBID        int    `json:"tmdbId"`
	IMDBID        string `json:"imdbId"`
	Monitored     bool   `json:"monitored"`
	Tags          []int  `json:"tags"`
}

type radarrTag struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// Movies returns every movie of the instance as a MediaRecord.
func (c *RadarrClient) Movies(ctx context.Context) ([]*models.MediaRecord, error) {
	var movies []radarrMovie
	if err := c.api.getJSON(ctx, "/api/v3/movie", &movies); err != nil {
		return nil, fmt.Errorf("radarr %s: %w", c.instance, err)
	}

	tagNames, err := c.tagNames(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]*models.MediaRecord, 0, len(movies))
	for _, m := range movies {
		rec := &models.MediaRecord{
			Type:            models.AssetTypeMovie,
			Title:           m.Title,
			OriginalTitle:   m.OriginalTitle,
			NormalizedTitle: titles.Normalize(m.Title),
			Folder:          m.Path,
			RootFolder:      m.RootFolder,
			InstanceName:    c.instance,
			Monitored:       m.Monitored,
			SecondaryYear:   m.SecondaryYear,
		}
		if m.Year > 0 {
			year := m.Year
			rec.Year = &year
		}
		if m.TMDBID > 0 {
			id := m.TMDBID
			rec.IDs.TMDBID = &id
		}
		if strings.HasPrefix(m.IMDBID, "tt") {
			id := m.IMDBID
			rec.IDs.IMDBID = &id
		}
		for _, alt := range m.AlternateTitles {
			if alt.Title != "" && alt.Title != m.Title {
				rec.AlternateTitles = append(rec.AlternateTitles, alt.Title)
			}
		}
		for _, tagID := range m.Tags {
			if name, ok := tagNames[tagID]; ok {
				rec.Tags = append(rec.Tags, name)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *RadarrClient) tagNames(ctx context.Context) (map[int]string, error) {
	var tags []radarrTag
	if err := c.api.getJSON(ctx, "/api/v3/tag", &tags); err != nil {
		return nil, fmt.Errorf("radarr %s tags: %w", c.instance, err)
	}
	out := make(map[int]string, len(tags))
	for _, t := range tags {
		out[t.ID] = t.Label
	}
	return out, nil
}
