package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stellar-p2p/backend/internal/models"
	"github.com/stellar-p2p/backend/internal/services"
	"go.uber.org/zap"
)

type cappedCodeStore struct {
	code models.AccessCode
}

func (s *cappedCodeStore) GetByCode(_ context.Context, code string) (*models.AccessCode, error) {
	if strings.EqualFold(code, s.code.Code) {
		cp := s.code
		return &cp, nil
	}
	return nil, nil
}

func (s *cappedCodeStore) IncrementUsage(_ context.Context, _ string) (bool, error) {
	if s.code.MaxUses > 0 && s.code.UsedCount >= s.code.MaxUses {
		return false, nil
	}
	s.code.UsedCount++
	return true, nil
}

func redeemApp(store *cappedCodeStore) *fiber.App {
	h := NewAccessHandler(services.NewAccessService(store, zap.NewNop()), zap.NewNop())
	app := fiber.New()
	app.Post("/access/redeem", h.Redeem)
	return app
}

func postRedeem(t *testing.T, app *fiber.App, code string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/access/redeem", strings.NewReader(`{"code":"`+code+`"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, body.Error
}

func TestRedeemAccessCode(t *testing.T) {
	store := &cappedCodeStore{code: models.AccessCode{Code: "EARLY1", Active: true, MaxUses: 1}}
	app := redeemApp(store)

	status, errMsg := postRedeem(t, app, "EARLY1")
	if status != fiber.StatusOK {
		t.Fatalf("first redemption status = %d, want 200 (%s)", status, errMsg)
	}

	// The single use is burned: the second attempt is a validation failure,
	// answered with 400 and the exact gate-page text.
	status, errMsg = postRedeem(t, app, "EARLY1")
	if status != fiber.StatusBadRequest {
		t.Errorf("capped redemption status = %d, want 400", status)
	}
	if errMsg != "Code usage limit reached" {
		t.Errorf("capped redemption error = %q", errMsg)
	}

	status, errMsg = postRedeem(t, app, "NOPE")
	if status != fiber.StatusBadRequest {
		t.Errorf("unknown code status = %d, want 400", status)
	}
	if errMsg != "Invalid code" {
		t.Errorf("unknown code error = %q", errMsg)
	}
}
