package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"fetcharr/apperr"
	"fetcharr/config"
	"fetcharr/models"
	"fetcharr/shared/httpclient"
)

// DelugeClient drives the download client over its single JSON endpoint.
// Sessions are cheap: every submission chain authenticates fresh and a
// mid-chain failure leaves the session dangling on purpose.
type DelugeClient struct {
	endpoint          string
	password          string
	movieDownloadPath string
	tvDownloadPath    string
	client            *http.Client
}

func NewDelugeClient(cfg *config.Config) *DelugeClient {
	return &DelugeClient{
		endpoint:          cfg.DelugeURL(),
		password:          cfg.DelugePassword,
		movieDownloadPath: cfg.MovieDownloadPath,
		tvDownloadPath:    cfg.TVDownloadPath,
		client:            httpclient.CatalogClient,
	}
}

type rpcRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
	ID     int    `json:"id"`
}

type rpcError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("deluge error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call posts one RPC to the /json endpoint. The session cookie comes from the
// auth.login response and is passed verbatim.
func (d *DelugeClient) call(ctx context.Context, session, method string, params []any) (*rpcResponse, *http.Response, error) {
	payload, err := json.Marshal(rpcRequest{Method: method, Params: params, ID: 1})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set("Cookie", session)
	}

	resp, err := httpclient.Do(d.client, req)
	if err != nil {
		return nil, nil, apperr.FromRequestError("deluge", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, nil, apperr.Upstream("deluge", resp.StatusCode)
	}

	var rpc rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpc); err != nil {
		resp.Body.Close()
		return nil, nil, fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	resp.Body.Close()

	return &rpc, resp, nil
}

// Authenticate exchanges the shared secret for a session cookie.
func (d *DelugeClient) Authenticate(ctx context.Context) (string, error) {
	rpc, resp, err := d.call(ctx, "", "auth.login", []any{d.password})
	if err != nil {
		return "", apperr.Session(apperr.StepAuth, err)
	}
	if rpc.Error != nil {
		return "", apperr.Session(apperr.StepAuth, rpc.Error)
	}

	session := resp.Header.Get("Set-Cookie")
	if session == "" {
		return "", apperr.Session(apperr.StepAuth, fmt.Errorf("no session cookie in login response"))
	}
	return session, nil
}

// EnsureConnected checks whether the web UI has a daemon attached and, if not,
// connects to the first available host.
func (d *DelugeClient) EnsureConnected(ctx context.Context, session string) error {
	rpc, _, err := d.call(ctx, session, "web.connected", nil)
	if err != nil {
		return apperr.Session(apperr.StepConnect, err)
	}
	if rpc.Error != nil {
		return apperr.Session(apperr.StepConnect, rpc.Error)
	}

	var connected bool
	if err := json.Unmarshal(rpc.Result, &connected); err == nil && connected {
		return nil
	}

	hostsRPC, _, err := d.call(ctx, session, "web.get_hosts", nil)
	if err != nil {
		return apperr.Session(apperr.StepConnect, err)
	}
	if hostsRPC.Error != nil {
		return apperr.Session(apperr.StepConnect, hostsRPC.Error)
	}

	// Host tuples: [id, address, port, status]
	var hosts [][]any
	if err := json.Unmarshal(hostsRPC.Result, &hosts); err != nil {
		return apperr.Session(apperr.StepConnect, fmt.Errorf("failed to decode host list: %w", err))
	}
	if len(hosts) == 0 || len(hosts[0]) == 0 {
		return apperr.Session(apperr.StepConnect, fmt.Errorf("no available hosts to connect to"))
	}

	hostID, ok := hosts[0][0].(string)
	if !ok {
		return apperr.Session(apperr.StepConnect, fmt.Errorf("unexpected host id type in host list"))
	}

	connectRPC, _, err := d.call(ctx, session, "web.connect", []any{hostID})
	if err != nil {
		return apperr.Session(apperr.StepConnect, err)
	}
	if connectRPC.Error != nil || string(connectRPC.Result) == "null" || string(connectRPC.Result) == "false" {
		return apperr.Session(apperr.StepConnect, fmt.Errorf("daemon rejected connect to host %s", hostID))
	}

	slog.Info("connected deluge web UI to daemon", "host", hostID)
	return nil
}

// FetchTorrent asks the download client to retrieve the torrent metadata
// server-side and returns the local reference path.
func (d *DelugeClient) FetchTorrent(ctx context.Context, session, torrentURL string) (string, error) {
	rpc, _, err := d.call(ctx, session, "web.download_torrent_from_url", []any{torrentURL})
	if err != nil {
		return "", apperr.Session(apperr.StepFetch, err)
	}
	if rpc.Error != nil {
		return "", apperr.Session(apperr.StepFetch, rpc.Error)
	}

	var path string
	if err := json.Unmarshal(rpc.Result, &path); err != nil || path == "" {
		return "", apperr.Session(apperr.StepFetch, fmt.Errorf("empty torrent path in response"))
	}
	return path, nil
}

// AddTorrent submits the fetched torrent with placement options for the media
// type. The transfer tuning makes partially-downloaded media playable sooner.
func (d *DelugeClient) AddTorrent(ctx context.Context, session, torrentPath string, mediaType models.MediaType) (string, error) {
	downloadLocation := d.tvDownloadPath
	if mediaType == models.MediaMovie {
		downloadLocation = d.movieDownloadPath
	}

	params := []any{[]any{map[string]any{
		"path": torrentPath,
		"options": map[string]any{
			"download_location":            downloadLocation,
			"move_completed":               false,
			"pre_allocate_storage":         true,
			"prioritize_first_last_pieces": true,
			"sequential_download":          true,
		},
	}}}

	rpc, _, err := d.call(ctx, session, "web.add_torrents", params)
	if err != nil {
		return "", apperr.Session(apperr.StepSubmit, err)
	}
	if rpc.Error != nil {
		return "", apperr.Session(apperr.StepSubmit, rpc.Error)
	}

	// Result shape: [[added, hash], ...]; the hash is the second element of
	// the first tuple.
	var added [][]any
	if err := json.Unmarshal(rpc.Result, &added); err != nil {
		return "", apperr.Session(apperr.StepSubmit, fmt.Errorf("failed to decode add result: %w", err))
	}
	if len(added) == 0 || len(added[0]) < 2 {
		return "", apperr.Session(apperr.StepSubmit, fmt.Errorf("no torrent handle in add result"))
	}
	hash, ok := added[0][1].(string)
	if !ok || hash == "" {
		return "", apperr.Session(apperr.StepSubmit, fmt.Errorf("no torrent handle in add result"))
	}
	return hash, nil
}

// Submit runs the full session workflow: authenticate, ensure a daemon is
// connected, fetch the torrent server-side, add the job. Strictly sequential;
// the first failed step aborts the submission.
func (d *DelugeClient) Submit(ctx context.Context, torrentURL string, mediaType models.MediaType) (string, error) {
	session, err := d.Authenticate(ctx)
	if err != nil {
		return "", err
	}
	if err := d.EnsureConnected(ctx, session); err != nil {
		return "", err
	}
	torrentPath, err := d.FetchTorrent(ctx, session, torrentURL)
	if err != nil {
		return "", err
	}
	hash, err := d.AddTorrent(ctx, session, torrentPath, mediaType)
	if err != nil {
		return "", err
	}

	slog.Info("torrent submitted to deluge", "hash", hash, "type", mediaType)
	return hash, nil
}

// TorrentStatus returns the progress snapshot for one job handle. Deluge
// reports progress 0..100; callers get 0..1.
func (d *DelugeClient) TorrentStatus(ctx context.Context, hash string) (models.DownloadJob, error) {
	session, err := d.Authenticate(ctx)
	if err != nil {
		return models.DownloadJob{}, err
	}

	rpc, _, err := d.call(ctx, session, "web.get_torrent_status", []any{hash, []string{"progress", "eta", "state"}})
	if err != nil {
		return models.DownloadJob{}, err
	}
	if rpc.Error != nil {
		return models.DownloadJob{}, fmt.Errorf("failed to fetch torrent status: %w", rpc.Error)
	}

	var status struct {
		Progress float64 `json:"progress"`
		Eta      int64   `json:"eta"`
		State    string  `json:"state"`
	}
	if err := json.Unmarshal(rpc.Result, &status); err != nil {
		return models.DownloadJob{}, fmt.Errorf("failed to decode torrent status: %w", err)
	}
	if status.State == "" {
		return models.DownloadJob{}, apperr.NotFound("torrent %s not found", hash)
	}

	return models.DownloadJob{
		Hash:       hash,
		Progress:   status.Progress / 100,
		EtaSeconds: status.Eta,
		State:      status.State,
	}, nil
}

// RemoveTorrent cancels a job at the download client, optionally deleting the
// downloaded data.
func (d *DelugeClient) RemoveTorrent(ctx context.Context, hash string, removeData bool) error {
	session, err := d.Authenticate(ctx)
	if err != nil {
		return err
	}

	rpc, _, err := d.call(ctx, session, "core.remove_torrent", []any{hash, removeData})
	if err != nil {
		return err
	}
	if rpc.Error != nil {
		return fmt.Errorf("failed to remove torrent: %w", rpc.Error)
	}
	return nil
}
