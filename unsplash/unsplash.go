package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"wayfare/models"
)

// Finder is the image-search seam used by the city meta resolver.
type Finder interface {
	FindImage(ctx context.Context, query string) (models.UnsplashImage, error)
}

// Client searches Unsplash for one representative photo per query.
type Client struct {
	accessKey string
	http      *http.Client
}

func NewClient() *Client {
	return &Client{
		accessKey: os.Getenv("UNSPLASH_ACCESS_KEY"),
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

type searchResponse struct {
	Results []struct {
		ID   string            `json:"id"`
		Urls map[string]string `json:"urls"`
		User struct {
			Name  string `json:"name"`
			Links struct {
				HTML string `json:"html"`
			} `json:"links"`
		} `json:"user"`
	} `json:"results"`
}

func (c *Client) FindImage(ctx context.Context, query string) (models.UnsplashImage, error) {
	api := fmt.Sprintf("https://api.unsplash.com/search/photos?query=%s&per_page=1", url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api, nil)
	if err != nil {
		return models.UnsplashImage{}, err
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.UnsplashImage{}, fmt.Errorf("unsplash search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.UnsplashImage{}, fmt.Errorf("unsplash search: status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.UnsplashImage{}, fmt.Errorf("unsplash search: %w", err)
	}
	if len(result.Results) == 0 {
		return models.UnsplashImage{}, fmt.Errorf("unsplash search: no image for %q", query)
	}

	first := result.Results[0]
	imgURL := first.Urls["regular"]
	if imgURL == "" {
		imgURL = first.Urls["small"]
	}
	return models.UnsplashImage{
		ID:         first.ID,
		URL:        imgURL,
		AuthorName: first.User.Name,
		AuthorLink: first.User.Links.HTML,
	}, nil
}
