package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wadjakorntonsri/gift-bundle/pkg/app"
	"github.com/wadjakorntonsri/gift-bundle/pkg/auth"
	"github.com/wadjakorntonsri/gift-bundle/pkg/config"
	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
	"github.com/wadjakorntonsri/gift-bundle/pkg/logging"
)

type gift struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Images []struct {
		ImageURL  string `json:"image_url"`
		IsPrimary bool   `json:"is_primary"`
	} `json:"images"`
}

type bundle struct {
	ID     string  `json:"id"`
	Status string  `json:"status"`
	Link   *string `json:"link"`
	Gifts  []gift  `json:"gifts"`
}

func TestIntegration(t *testing.T) {
	// 1. Setup app on an in-memory database
	cfg := &config.Config{
		DatabaseURL:      "file:e2e?mode=memory&cache=shared",
		FrontendURL:      "http://localhost:3000",
		JWTSecret:        "e2e-secret",
		JWTTTL:           time.Hour,
		S3Bucket:         "gifts",
		S3Region:         "ap-northeast-2",
		S3Endpoint:       "http://localhost:9000",
		S3AccessKey:      "minio",
		S3SecretKey:      "minio123",
		UploadURLTTL:     time.Minute,
		DailyBundleLimit: 10,
		QuotaTimezone:    "UTC",
		UserCacheSize:    16,
	}
	application, err := app.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Failed to init app: %v", err)
	}
	defer application.Close()

	server := httptest.NewServer(application.Handler)
	defer server.Close()
	client := server.Client()

	// 2. Seed a user and sign a token for them
	ctx := context.Background()
	now := time.Now().UTC()
	owner := &domain.User{ID: "e2e-owner", KakaoID: 1, Nickname: "owner", CreatedAt: now, UpdatedAt: now}
	if err := application.Repo.CreateUser(ctx, owner); err != nil {
		t.Fatal(err)
	}
	token, _, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL).Issue(owner.ID)
	if err != nil {
		t.Fatal(err)
	}

	call := func(method, path string, payload interface{}, out interface{}) int {
		t.Helper()
		var body io.Reader
		if payload != nil {
			raw, _ := json.Marshal(payload)
			body = bytes.NewBuffer(raw)
		}
		req, _ := http.NewRequest(method, server.URL+path, body)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", method, path, err)
		}
		defer resp.Body.Close()
		if out != nil {
			json.NewDecoder(resp.Body).Decode(out)
		}
		return resp.StatusCode
	}

	// TEST 1: Upload URLs
	var upload domain.UploadURL
	if status := call("POST", "/api/v1/uploads", map[string]string{"file_extension": "png"}, &upload); status != http.StatusCreated {
		t.Fatalf("Upload expected 201, got %d", status)
	}
	if upload.ObjectURL == "" || upload.URL == upload.ObjectURL {
		t.Errorf("Unexpected upload URLs: %+v", upload)
	}

	// TEST 2: Create bundle with two gifts
	var created bundle
	status := call("POST", "/api/v1/bundles", map[string]interface{}{
		"name":        "Graduation",
		"design_type": "PURPLE",
		"gifts": []map[string]interface{}{
			{"name": "pen", "image_urls": []string{upload.ObjectURL}},
			{"name": "watch", "image_urls": []string{"https://cdn/watch.png"}},
		},
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("Create expected 201, got %d", status)
	}
	if created.Status != "DRAFT" || len(created.Gifts) != 2 {
		t.Fatalf("Unexpected bundle: %+v", created)
	}
	for _, g := range created.Gifts {
		if len(g.Images) != 1 || !g.Images[0].IsPrimary {
			t.Errorf("Gift %s should have one primary image", g.Name)
		}
	}

	// TEST 3: Keep both gifts and append a third
	var updated bundle
	status = call("PUT", "/api/v1/bundles/"+created.ID+"/gifts", map[string]interface{}{
		"gifts": []map[string]interface{}{
			{"id": created.Gifts[0].ID, "name": "pen", "image_urls": []string{upload.ObjectURL}},
			{"id": created.Gifts[1].ID, "name": "watch", "image_urls": []string{"https://cdn/watch.png"}},
			{"name": "card", "image_urls": []string{"https://cdn/card.png"}},
		},
	}, &updated)
	if status != http.StatusOK {
		t.Fatalf("Update expected 200, got %d", status)
	}
	if len(updated.Gifts) != 3 || updated.Gifts[0].ID != created.Gifts[0].ID || updated.Gifts[2].Name != "card" {
		t.Errorf("Unexpected gifts after update: %+v", updated.Gifts)
	}

	// TEST 4: Publish
	var published bundle
	if status := call("POST", "/api/v1/bundles/"+created.ID+"/publish", map[string]string{"delivery_character_type": "BEAR"}, &published); status != http.StatusOK {
		t.Fatalf("Publish expected 200, got %d", status)
	}
	if published.Status != "PUBLISHED" || published.Link == nil || *published.Link == "" {
		t.Fatalf("Unexpected published bundle: %+v", published)
	}

	// TEST 5: Recipient answers every gift
	var view bundle
	if status := call("GET", "/b/"+*published.Link, nil, &view); status != http.StatusOK {
		t.Fatalf("Recipient view expected 200, got %d", status)
	}
	var result struct {
		BundleCompleted bool `json:"bundle_completed"`
	}
	for _, g := range view.Gifts {
		if status := call("POST", "/b/"+*published.Link+"/gifts/"+g.ID+"/responses", map[string]string{"tag": "LIKE_IT"}, &result); status != http.StatusCreated {
			t.Fatalf("Respond expected 201, got %d", status)
		}
	}
	if !result.BundleCompleted {
		t.Error("Last response should complete the bundle")
	}

	// TEST 6: Owner sees the completed bundle
	var detail bundle
	if status := call("GET", "/api/v1/bundles/"+created.ID, nil, &detail); status != http.StatusOK {
		t.Fatalf("Get expected 200, got %d", status)
	}
	if detail.Status != "COMPLETED" {
		t.Errorf("Expected COMPLETED, got %s", detail.Status)
	}

	// TEST 7: Export (Dump)
	bundles, err := application.Repo.Dump(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(bundles) != 1 || len(bundles[0].Gifts) != 3 {
		t.Errorf("Expected 1 bundle with 3 gifts in dump, got %+v", bundles)
	}
}
