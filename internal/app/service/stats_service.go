package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slugster/slugster/internal/app/model"
	"github.com/slugster/slugster/internal/app/repository"
)

// ErrUnauthorized signals that the requester is not the link's owner.
var ErrUnauthorized = errors.New("requester does not own this link")

// DeviceCount is one grouped-count entry keyed by device class.
type DeviceCount struct {
	Device string `json:"device"`
	Count  int    `json:"count"`
}

// BrowserCount is one grouped-count entry keyed by browser.
type BrowserCount struct {
	Browser string `json:"browser"`
	Count   int    `json:"count"`
}

// OSCount is one grouped-count entry keyed by operating system.
type OSCount struct {
	OperatingSystem string `json:"operatingSystem"`
	Count           int    `json:"count"`
}

// CountryCount is one grouped-count entry keyed by country.
type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// ClickRecord is one flat entry in the report's record list.
type ClickRecord struct {
	Slug            string    `json:"slug"`
	IP              string    `json:"ip"`
	Device          string    `json:"device"`
	Browser         string    `json:"browser"`
	OperatingSystem string    `json:"operatingSystem"`
	Country         string    `json:"country"`
	Date            time.Time `json:"date"`
}

// StatsReport aggregates a link's click log. Grouped counts are ordered by
// first appearance in the scan, not by count.
type StatsReport struct {
	TotalClicks      int            `json:"totalClicks"`
	Devices          []DeviceCount  `json:"devices"`
	Browsers         []BrowserCount `json:"browsers"`
	OperatingSystems []OSCount      `json:"operatingSystems"`
	Countries        []CountryCount `json:"countries"`
	RecordList       []ClickRecord  `json:"recordList,omitempty"`
}

// StatsService builds ownership-scoped click reports.
type StatsService interface {
	GetStats(ctx context.Context, slug string, identity *model.Identity) (*StatsReport, error)
}

type statsService struct {
	links  repository.LinkRepository
	clicks repository.ClickRepository
}

// NewStatsService returns a stats aggregator over the given stores.
func NewStatsService(links repository.LinkRepository, clicks repository.ClickRepository) StatsService {
	return &statsService{links: links, clicks: clicks}
}

// GetStats returns the report for slug. An unowned link has no retrievable
// stats and reports not-found, same as an unknown slug. A requester who is
// not the owner gets ErrUnauthorized.
func (s *statsService) GetStats(ctx context.Context, slug string, identity *model.Identity) (*StatsReport, error) {
	link, err := s.links.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !link.Owned() {
		return nil, repository.ErrLinkNotFound
	}
	if identity == nil || identity.UserID != *link.OwnerID {
		return nil, ErrUnauthorized
	}

	clicks, err := s.clicks.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("load clicks: %w", err)
	}

	report := &StatsReport{
		TotalClicks:      len(clicks),
		Devices:          []DeviceCount{},
		Browsers:         []BrowserCount{},
		OperatingSystems: []OSCount{},
		Countries:        []CountryCount{},
	}
	if len(clicks) == 0 {
		return report, nil
	}

	deviceIdx := map[string]int{}
	browserIdx := map[string]int{}
	osIdx := map[string]int{}
	countryIdx := map[string]int{}

	report.RecordList = make([]ClickRecord, 0, len(clicks))
	for _, click := range clicks {
		if i, ok := deviceIdx[click.Device]; ok {
			report.Devices[i].Count++
		} else {
			deviceIdx[click.Device] = len(report.Devices)
			report.Devices = append(report.Devices, DeviceCount{Device: click.Device, Count: 1})
		}

		if i, ok := browserIdx[click.Browser]; ok {
			report.Browsers[i].Count++
		} else {
			browserIdx[click.Browser] = len(report.Browsers)
			report.Browsers = append(report.Browsers, BrowserCount{Browser: click.Browser, Count: 1})
		}

		if i, ok := osIdx[click.OS]; ok {
			report.OperatingSystems[i].Count++
		} else {
			osIdx[click.OS] = len(report.OperatingSystems)
			report.OperatingSystems = append(report.OperatingSystems, OSCount{OperatingSystem: click.OS, Count: 1})
		}

		if i, ok := countryIdx[click.Country]; ok {
			report.Countries[i].Count++
		} else {
			countryIdx[click.Country] = len(report.Countries)
			report.Countries = append(report.Countries, CountryCount{Country: click.Country, Count: 1})
		}

		report.RecordList = append(report.RecordList, ClickRecord{
			Slug:            click.Slug,
			IP:              click.IP,
			Device:          click.Device,
			Browser:         click.Browser,
			OperatingSystem: click.OS,
			Country:         click.Country,
			Date:            click.CreatedAt,
		})
	}

	return report, nil
}
