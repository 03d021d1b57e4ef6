package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"polereview/internal/api"
	"polereview/internal/config"
	"polereview/internal/imagecache"
	"polereview/internal/photostore"
	"polereview/internal/session"
	"polereview/internal/testsupport"
)

func startServer(t *testing.T, mutate func(*config.Config)) (string, *session.Store, *imagecache.Service, *api.Server) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	if mutate != nil {
		mutate(cfg)
	}

	store, err := session.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	dir := testsupport.PoleDir(t, cfg.Paths.WorkDir, "POLE001")
	photo := filepath.Join(dir, "front.jpg")
	testsupport.WriteJPEG(t, photo, 640, 480)
	folders := []photostore.PoleFolder{
		{ID: "POLE001", Dir: dir, Photos: []photostore.Photo{{Original: photo}}},
	}
	if err := store.InitFromScan(context.Background(), folders, cfg.Checklist.Items); err != nil {
		t.Fatalf("init from scan: %v", err)
	}

	images := imagecache.NewService(cfg, nil)
	srv := api.NewServer(cfg, store, images, nil)
	if srv == nil {
		t.Fatal("NewServer returned nil for a configured bind address")
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(srv.Stop)
	return "http://" + srv.Addr(), store, images, srv
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestServerStatusAndPoles(t *testing.T) {
	base, store, _, _ := startServer(t, nil)
	ctx := context.Background()
	if err := store.SetReviewed(ctx, "POLE001", true); err != nil {
		t.Fatalf("set reviewed: %v", err)
	}

	var status api.StatusResponse
	resp := getJSON(t, base+"/api/status", &status)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status endpoint returned %d", resp.StatusCode)
	}
	if !status.Running || status.PoleCount != 1 || status.ReviewedCount != 1 {
		t.Fatalf("unexpected status payload: %+v", status)
	}

	var list api.PoleListResponse
	getJSON(t, base+"/api/poles", &list)
	if len(list.Poles) != 1 || list.Poles[0].ID != "POLE001" {
		t.Fatalf("unexpected pole list: %+v", list)
	}

	var detail api.PoleDetailResponse
	getJSON(t, base+"/api/poles/POLE001", &detail)
	if detail.Pole.ID != "POLE001" || len(detail.Pole.Photos) != 1 {
		t.Fatalf("unexpected pole detail: %+v", detail)
	}

	resp = getJSON(t, base+"/api/poles/POLE999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown pole returned %d", resp.StatusCode)
	}
}

func TestServerBearerAuth(t *testing.T) {
	base, _, _, _ := startServer(t, func(cfg *config.Config) {
		cfg.Paths.APIToken = "sekrit"
	})

	resp, err := http.Get(base + "/api/status")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated request returned %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, base+"/api/status", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with token: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("authenticated request returned %d", resp.StatusCode)
	}
}

func TestServerNavigatePrefetch(t *testing.T) {
	base, _, images, srv := startServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		images.Wait()
	})
	images.Start(ctx)

	resp, err := http.Post(base+"/api/navigate?pole=POLE001", "", nil)
	if err != nil {
		t.Fatalf("POST navigate: %v", err)
	}
	var ack api.NavigateResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		t.Fatalf("decode navigate response: %v", err)
	}
	resp.Body.Close()
	if ack.Pole != "POLE001" || ack.Requested != 2 {
		t.Fatalf("unexpected navigate ack: %+v", ack)
	}

	// Pump the drain loop the way serve mode does until the thumbnail and
	// the large rendition land.
	var nav api.NavigationResponse
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		images.Drain(srv.ApplyResult)
		getJSON(t, base+"/api/navigate", &nav)
		if len(nav.Ready) >= 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(nav.Ready) < 2 {
		t.Fatalf("renditions never became ready: %+v", nav)
	}
	if nav.Pole != "POLE001" || nav.Token != ack.Token {
		t.Fatalf("navigation state mismatch: %+v", nav)
	}

	// Navigating again bumps the token and clears readiness.
	resp, err = http.Post(base+"/api/navigate?pole=POLE001", "", nil)
	if err != nil {
		t.Fatalf("POST navigate again: %v", err)
	}
	var second api.NavigateResponse
	if err := json.NewDecoder(resp.Body).Decode(&second); err != nil {
		t.Fatalf("decode second navigate: %v", err)
	}
	resp.Body.Close()
	if second.Token != ack.Token+1 {
		t.Fatalf("token did not advance: %d -> %d", ack.Token, second.Token)
	}
	// Nothing has been drained since, so the ready set starts empty again.
	getJSON(t, base+"/api/navigate", &nav)
	if nav.Token != second.Token || len(nav.Ready) != 0 {
		t.Fatalf("stale readiness survived navigation: %+v", nav)
	}

	resp, err = http.Post(base+"/api/navigate?pole=POLE999", "", nil)
	if err != nil {
		t.Fatalf("POST navigate unknown: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown pole returned %d", resp.StatusCode)
	}
}

func TestServerImageRendition(t *testing.T) {
	base, store, _, _ := startServer(t, nil)
	pole, err := store.GetPole(context.Background(), "POLE001")
	if err != nil {
		t.Fatalf("get pole: %v", err)
	}
	photo := pole.Photos[0].Original

	url := fmt.Sprintf("%s/api/image?path=%s&w=320&h=240", base, photo)
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET image: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("image endpoint returned %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Fatalf("unexpected content type %s", ct)
	}

	// Requests escaping the working tree are refused.
	resp2, err := http.Get(base + "/api/image?path=/etc/passwd")
	if err != nil {
		t.Fatalf("GET outside path: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusForbidden {
		t.Fatalf("outside path returned %d", resp2.StatusCode)
	}
}
