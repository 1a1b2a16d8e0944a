// Package geo resolves axon addresses to location and network-provider
// metadata via the ip-api.com lookup service and classifies the hosting
// type of each address. Resolution is fail-soft: any lookup problem
// degrades to the Unknown sentinel record so one bad address can never fail
// a snapshot build.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/subnetscope/subnetscope/internal/metrics"
	"github.com/subnetscope/subnetscope/pkg/models"
)

// geoFields is the exact ip-api field selection; requesting a fixed set
// keeps responses small and the parser stable.
const geoFields = "status,message,country,countryCode,region,regionName,city,zip," +
	"lat,lon,timezone,isp,org,as,asname,reverse,mobile,proxy,hosting"

// ipAPIResponse mirrors one ip-api.com JSON lookup.
type ipAPIResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Region      string  `json:"region"`
	RegionName  string  `json:"regionName"`
	City        string  `json:"city"`
	Zip         string  `json:"zip"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Timezone    string  `json:"timezone"`
	ISP         string  `json:"isp"`
	Org         string  `json:"org"`
	AS          string  `json:"as"`
	ASName      string  `json:"asname"`
	Reverse     string  `json:"reverse"`
	Mobile      bool    `json:"mobile"`
	Proxy       bool    `json:"proxy"`
	Hosting     bool    `json:"hosting"`
}

// Resolver looks up address metadata with a fixed per-lookup timeout.
type Resolver struct {
	baseURL string
	httpc   *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewResolver creates a Resolver against the given ip-api base URL.
func NewResolver(baseURL string, timeout time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
	}
}

// Resolve returns the metadata record for ip. It never fails the caller:
// timeouts, transport errors, non-success lookups, and malformed bodies all
// return the Unknown sentinel.
func (r *Resolver) Resolve(ctx context.Context, ip string) models.GeoRecord {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	u := fmt.Sprintf("%s/json/%s?fields=%s", r.baseURL, ip, geoFields)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return r.unresolved(ip, err)
	}

	resp, err := r.httpc.Do(req)
	if err != nil {
		return r.unresolved(ip, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return r.unresolved(ip, fmt.Errorf("status %d", resp.StatusCode))
	}

	var data ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return r.unresolved(ip, err)
	}
	if data.Status != "success" {
		return r.unresolved(ip, fmt.Errorf("lookup failed: %s", data.Message))
	}

	metrics.GeoLookups.WithLabelValues("resolved").Inc()
	return models.GeoRecord{
		Country:      data.Country,
		City:         data.City,
		Lat:          data.Lat,
		Lon:          data.Lon,
		Region:       data.RegionName,
		ISP:          data.ISP,
		Organization: data.Org,
		ASN:          data.AS,
		ASName:       data.ASName,
		HostingType:  ClassifyHosting(data.ISP, data.Org, data.AS, data.Hosting),
		IsProxy:      data.Proxy,
		IsMobile:     data.Mobile,
		IsHosting:    data.Hosting,
		Timezone:     data.Timezone,
		Resolved:     true,
	}
}

func (r *Resolver) unresolved(ip string, err error) models.GeoRecord {
	metrics.GeoLookups.WithLabelValues("failed").Inc()
	r.logger.Debug("geolocation lookup failed", zap.String("ip", ip), zap.Error(err))
	return models.UnknownGeoRecord()
}
