package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"gridsight/internal/traffic"
	"gridsight/pkg/log"
)

const screenshotPath = "/v1/screenshot"

// Error is a capture-layer failure: the renderer was unreachable, timed
// out, or returned something that is not a map screenshot.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("capture %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Config struct {
	Endpoint       string `yaml:"endpoint"`
	ViewportWidth  int    `yaml:"viewportWidth"`
	ViewportHeight int    `yaml:"viewportHeight"`
	TimeoutSec     int    `yaml:"timeoutSec"`
}

func DefaultConfig() Config {
	return Config{
		Endpoint:       "http://127.0.0.1:8090",
		ViewportWidth:  1200,
		ViewportHeight: 800,
		TimeoutSec:     60,
	}
}

// renderRequest is the renderer service's wire contract. The service owns
// all browser mechanics (navigation, cookie banners, traffic layer
// controls); we only tell it what view to produce.
type renderRequest struct {
	URL         string  `json:"url"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	DayIndex    int     `json:"dayIndex"`
	TimePercent float64 `json:"timePercent"`
}

// Renderer captures map screenshots through an external headless-browser
// render service.
type Renderer struct {
	conf   Config
	cli    *http.Client
	logger *logrus.Entry
}

func NewRenderer(conf Config) *Renderer {
	return &Renderer{
		conf: conf,
		cli: &http.Client{
			Timeout: time.Duration(conf.TimeoutSec) * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: log.WithComponent("capture"),
	}
}

// Capture implements traffic.Capturer. The marker is rendered at the
// viewport center, so its pixel coordinate is known without searching.
func (r *Renderer) Capture(ctx context.Context, loc traffic.Location, view traffic.ViewParameters) (*traffic.CapturedImage, error) {
	body, err := json.Marshal(renderRequest{
		URL:         view.MapURL(),
		Width:       r.conf.ViewportWidth,
		Height:      r.conf.ViewportHeight,
		DayIndex:    view.DayIndex,
		TimePercent: view.TimePercent,
	})
	if err != nil {
		return nil, &Error{Op: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.conf.Endpoint+screenshotPath, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.cli.Do(req)
	if err != nil {
		return nil, &Error{Op: "render", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &Error{Op: "render", Err: fmt.Errorf("renderer returned %d: %s", resp.StatusCode, msg)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: "read response", Err: err}
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &Error{Op: "decode png", Err: err}
	}

	r.logger.Debugf("captured %dx%d view of %v,%v in %v",
		img.Bounds().Dx(), img.Bounds().Dy(), loc.Lat, loc.Lng, time.Since(start))

	bounds := img.Bounds()
	return &traffic.CapturedImage{
		Img:    img,
		Raw:    raw,
		Marker: image.Pt(bounds.Min.X+bounds.Dx()/2, bounds.Min.Y+bounds.Dy()/2),
	}, nil
}
