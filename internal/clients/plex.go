package clients

import (
	"context"
	"fmt"

	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/JustinTDCT/PosterVault/internal/titles"
)

// PlexClient reads library sections and their collections from one Plex
// server. Plex answers in JSON when the Accept header asks for it.
type PlexClient struct {
	instance string
	api      *apiClient
}

func NewPlexClient(instance, baseURL, token string) *PlexClient {
	return &PlexClient{
		instance: instance,
		api:      newAPIClient(baseURL, map[string]string{"X-Plex-Token": token}),
	}
}

func (c *PlexClient) Instance() string { return c.instance }

type plexSectionList struct {
	MediaContainer struct {
		Directory []struct {
			Key   string `json:"key"`
			Title string `json:"title"`
			Type  string `json:"type"` // "movie" or "show"
		} `json:"Directory"`
	} `json:"MediaContainer"`
}

type plexItemList struct {
	MediaContainer struct {
		Metadata []struct {
			RatingKey string `json:"ratingKey"`
			Title     string `json:"title"`
			Year      int    `json:"year"`
			Type      string `json:"type"`
		} `json:"Metadata"`
	} `json:"MediaContainer"`
}

// Library is one Plex section.
type Library struct {
	Key   string
	Name  string
	Type  models.AssetType
	Items []*models.PlexItemRow
}

// Libraries returns every movie and show section with its items.
func (c *PlexClient) Libraries(ctx context.Context) ([]*Library, error) {
	var sections plexSectionList
	if err := c.api.getJSON(ctx, "/library/sections", &sections); err != nil {
		return nil, fmt.Errorf("plex %s sections: %w", c.instance, err)
	}

	var out []*Library
	for _, dir := range sections.MediaContainer.Directory {
		var assetType models.AssetType
		switch dir.Type {
		case "movie":
			assetType = models.AssetTypeMovie
		case "show":
			assetType = models.AssetTypeSeries
		default:
			continue
		}

		var items plexItemList
		if err := c.api.getJSON(ctx, "/library/sections/"+dir.Key+"/all", &items); err != nil {
			return nil, fmt.Errorf("plex %s library %q: %w", c.instance, dir.Title, err)
		}

		lib := &Library{Key: dir.Key, Name: dir.Title, Type: assetType}
		for _, md := range items.MediaContainer.Metadata {
			row := &models.PlexItemRow{
				Instance:    c.instance,
				LibraryName: dir.Title,
				RatingKey:   md.RatingKey,
				Title:       md.Title,
				Type:        assetType,
			}
			if md.Year > 0 {
				year := md.Year
				row.Year = &year
			}
			lib.Items = append(lib.Items, row)
		}
		out = append(out, lib)
	}
	return out, nil
}

// Collections returns the collections of one section as MediaRecords, keyed
// to the section's library name.
func (c *PlexClient) Collections(ctx context.Context, lib *Library) ([]*models.MediaRecord, error) {
	var list plexItemList
	if err := c.api.getJSON(ctx, "/library/sections/"+lib.Key+"/collections", &list); err != nil {
		return nil, fmt.Errorf("plex %s collections %q: %w", c.instance, lib.Name, err)
	}

	records := make([]*models.MediaRecord, 0, len(list.MediaContainer.Metadata))
	for _, md := range list.MediaContainer.Metadata {
		rec := &models.MediaRecord{
			Type:            models.AssetTypeCollection,
			Title:           md.Title,
			NormalizedTitle: titles.Normalize(md.Title),
			LibraryName:     lib.Name,
			InstanceName:    c.instance,
		}
		if md.Year > 0 {
			year := md.Year
			rec.Year = &year
		}
		variants := titles.GenerateVariants(md.Title)
		rec.AlternateTitles = variants.AlternateTitles
		records = append(records, rec)
	}
	return records, nil
}
