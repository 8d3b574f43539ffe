package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"fetcharr/apperr"
	"fetcharr/config"
	"fetcharr/shared/httpclient"
)

// DiskSpace is the storage status surfaced to callers.
type DiskSpace struct {
	Volume     string `json:"volume"`
	TotalBytes int64  `json:"totalBytes"`
	UsedBytes  int64  `json:"usedBytes"`
}

// SynologyClient reads volume usage off the NAS. Same session-token shape as
// the download client: login for a sid, pass it on every call. The sid is
// shared by concurrent requests, so it sits behind the mutex.
type SynologyClient struct {
	baseURL  string
	username string
	password string
	client   *http.Client

	mu  sync.Mutex
	sid string
}

func NewSynologyClient(cfg *config.Config) *SynologyClient {
	return &SynologyClient{
		baseURL:  "https://" + cfg.SynologyHost + ":" + cfg.SynologyPort,
		username: cfg.SynologyUsername,
		password: cfg.SynologyPassword,
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				// DSM ships a self-signed certificate by default.
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
	}
}

// Configured reports whether NAS credentials are present at all.
func (s *SynologyClient) Configured() bool {
	return !strings.HasPrefix(s.baseURL, "https://:") && s.username != "" && s.password != ""
}

type synoEnvelope struct {
	Success bool `json:"success"`
	Error   *struct {
		Code int `json:"code"`
	} `json:"error"`
	Data struct {
		Sid     string `json:"sid"`
		Volumes []struct {
			ID          string `json:"id"`
			Description string `json:"vol_desc"`
			Size        struct {
				Total string `json:"total"`
				Used  string `json:"used"`
			} `json:"size"`
		} `json:"volumes"`
	} `json:"data"`
}

func (s *SynologyClient) get(ctx context.Context, path string, params map[string]string) (*synoEnvelope, error) {
	resp, err := httpclient.Get(ctx, s.client, httpclient.BuildQueryURL(s.baseURL+path, params), nil)
	if err != nil {
		return nil, apperr.FromRequestError("synology", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, apperr.Upstream("synology", resp.StatusCode)
	}

	var envelope synoEnvelope
	if err := httpclient.DecodeJSON(resp, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		code := 0
		if envelope.Error != nil {
			code = envelope.Error.Code
		}
		return nil, fmt.Errorf("synology API call failed with code %d", code)
	}
	return &envelope, nil
}

// session returns the cached sid, logging in when there is none yet. Holding
// the lock across the login keeps concurrent first calls from each
// authenticating.
func (s *SynologyClient) session(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sid != "" {
		return s.sid, nil
	}

	envelope, err := s.get(ctx, "/webapi/auth.cgi", map[string]string{
		"api":     "SYNO.API.Auth",
		"version": "3",
		"method":  "login",
		"account": s.username,
		"passwd":  s.password,
		"session": "FileStation",
		"format":  "sid",
	})
	if err != nil {
		return "", fmt.Errorf("synology authentication failed: %w", err)
	}
	s.sid = envelope.Data.Sid
	return s.sid, nil
}

// VolumeInfo returns total/used bytes for the named volume.
func (s *SynologyClient) VolumeInfo(ctx context.Context, volumeName string) (DiskSpace, error) {
	sid, err := s.session(ctx)
	if err != nil {
		return DiskSpace{}, err
	}

	envelope, err := s.get(ctx, "/webapi/entry.cgi", map[string]string{
		"api":     "SYNO.Storage.CGI.Storage",
		"version": "1",
		"method":  "load_info",
		"_sid":    sid,
	})
	if err != nil {
		return DiskSpace{}, err
	}

	for _, volume := range envelope.Data.Volumes {
		if volume.ID == volumeName || volume.Description == volumeName {
			return DiskSpace{
				Volume:     volume.ID,
				TotalBytes: parseBytes(volume.Size.Total),
				UsedBytes:  parseBytes(volume.Size.Used),
			}, nil
		}
	}
	return DiskSpace{}, apperr.NotFound("volume %s not found on NAS", volumeName)
}

func parseBytes(s string) int64 {
	var n int64
	fmt.Sscanf(s, "%d", &n)
	return n
}
