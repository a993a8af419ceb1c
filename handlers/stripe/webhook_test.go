package stripe

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"katiopa-backend/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	stripe "github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

const testWebhookSecret = "whsec_test_secret"

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

// signPayload builds a Stripe-Signature header the way Stripe signs
// deliveries: HMAC-SHA256 over "<timestamp>.<raw body>".
func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func buildEvent(t *testing.T, id string, eventType string, object map[string]interface{}) []byte {
	t.Helper()
	event := map[string]interface{}{
		"id":          id,
		"type":        eventType,
		"api_version": stripe.APIVersion,
		"data": map[string]interface{}{
			"object": object,
		},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Error marshaling the test event: %s", err)
	}
	return payload
}

func postWebhook(t *testing.T, payload []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	r := testutils.SetupTestRouter()
	r.POST("/stripe/webhook", StripeWebhookHandler)

	req, _ := http.NewRequest(http.MethodPost, "/stripe/webhook", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func expectEventNotProcessed(mock sqlmock.Sqlmock, eventID string) {
	mock.ExpectQuery(`SELECT (.+) FROM "webhook_events" WHERE event_id = (.+)`).
		WithArgs(eventID, 1).
		WillReturnError(gorm.ErrRecordNotFound)
}

func expectMarkProcessed(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "webhook_events" (.+) RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("event-row-uuid"))
	mock.ExpectCommit()
}

func checkoutSessionObject(userID, planID, priceID, stripeSubID string) map[string]interface{} {
	return map[string]interface{}{
		"id":             "cs_test_1",
		"subscription":   stripeSubID,
		"payment_status": "paid",
		"metadata": map[string]string{
			"userId":  userID,
			"planId":  planID,
			"priceId": priceID,
		},
	}
}

func TestStripeWebhookHandler_InvalidSignature(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	payload := buildEvent(t, "evt_sig", "checkout.session.completed",
		checkoutSessionObject("u1", "PRO", "price_1QKatProMonthly999", "sub_1"))

	resp := postWebhook(t, payload, signPayload(payload, "whsec_wrong_secret"))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	// No query must have reached the store
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripeWebhookHandler_TamperedPayload(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	payload := buildEvent(t, "evt_tampered", "checkout.session.completed",
		checkoutSessionObject("u1", "PRO", "price_1QKatProMonthly999", "sub_1"))
	signature := signPayload(payload, testWebhookSecret)

	tampered := bytes.Replace(payload, []byte(`"PRO"`), []byte(`"FAMILY"`), 1)
	resp := postWebhook(t, tampered, signature)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripeWebhookHandler_MissingSecret(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	payload := buildEvent(t, "evt_nosecret", "checkout.session.completed",
		checkoutSessionObject("u1", "PRO", "price_1QKatProMonthly999", "sub_1"))

	resp := postWebhook(t, payload, signPayload(payload, testWebhookSecret))

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripeWebhookHandler_CheckoutSessionCompleted(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	userID := "11111111-1111-1111-1111-111111111111"

	expectEventNotProcessed(mock, "evt_checkout_1")
	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = (.+)`).
		WithArgs(userID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(userID, "parent@example.com"))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "subscriptions" (.+) ON CONFLICT (.+) RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("sub-row-uuid"))
	mock.ExpectCommit()
	expectMarkProcessed(mock)

	payload := buildEvent(t, "evt_checkout_1", "checkout.session.completed",
		checkoutSessionObject(userID, "PRO", "price_1QKatProMonthly999", "sub_1"))

	resp := postWebhook(t, payload, signPayload(payload, testWebhookSecret))

	assert.Equal(t, http.StatusOK, resp.Code)

	var respBody map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &respBody)
	assert.Equal(t, true, respBody["received"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripeWebhookHandler_DuplicateEventIsSkipped(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "webhook_events" WHERE event_id = (.+)`).
		WithArgs("evt_checkout_1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "type"}).
			AddRow("event-row-uuid", "evt_checkout_1", "checkout.session.completed"))

	payload := buildEvent(t, "evt_checkout_1", "checkout.session.completed",
		checkoutSessionObject("11111111-1111-1111-1111-111111111111", "PRO", "price_1QKatProMonthly999", "sub_1"))

	resp := postWebhook(t, payload, signPayload(payload, testWebhookSecret))

	assert.Equal(t, http.StatusOK, resp.Code)

	var respBody map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &respBody)
	assert.Equal(t, "Event already processed", respBody["message"])

	// The subscription store must not have been touched
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripeWebhookHandler_CheckoutWithoutMetadata(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	expectEventNotProcessed(mock, "evt_nometa")

	payload := buildEvent(t, "evt_nometa", "checkout.session.completed", map[string]interface{}{
		"id":             "cs_test_2",
		"subscription":   "sub_2",
		"payment_status": "paid",
	})

	resp := postWebhook(t, payload, signPayload(payload, testWebhookSecret))

	// Unusable payload: rejected without retry and without state change
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripeWebhookHandler_CheckoutUnknownPlan(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	expectEventNotProcessed(mock, "evt_badplan")

	payload := buildEvent(t, "evt_badplan", "checkout.session.completed",
		checkoutSessionObject("11111111-1111-1111-1111-111111111111", "GOLD", "", "sub_3"))

	resp := postWebhook(t, payload, signPayload(payload, testWebhookSecret))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripeWebhookHandler_SubscriptionUpdatedDeactivates(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	userID := "11111111-1111-1111-1111-111111111111"

	expectEventNotProcessed(mock, "evt_upd_1")
	mock.ExpectQuery(`SELECT (.+) FROM "subscriptions" WHERE stripe_subscription_id = (.+)`).
		WithArgs("sub_1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "plan_id", "is_active", "stripe_subscription_id"}).
			AddRow("sub-row-uuid", userID, "PRO", true, "sub_1"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "subscriptions" SET (.+) WHERE stripe_subscription_id = (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectMarkProcessed(mock)

	payload := buildEvent(t, "evt_upd_1", "customer.subscription.updated", map[string]interface{}{
		"id":     "sub_1",
		"status": "canceled",
		"items": map[string]interface{}{
			"data": []map[string]interface{}{
				{
					"current_period_end": time.Now().Add(24 * time.Hour).Unix(),
					"price":              map[string]interface{}{"id": "price_1QKatProMonthly999"},
				},
			},
		},
	})

	resp := postWebhook(t, payload, signPayload(payload, testWebhookSecret))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripeWebhookHandler_SubscriptionUpdatedUnknownHandle(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	expectEventNotProcessed(mock, "evt_upd_2")
	mock.ExpectQuery(`SELECT (.+) FROM "subscriptions" WHERE stripe_subscription_id = (.+)`).
		WithArgs("sub_unknown", 1).
		WillReturnError(gorm.ErrRecordNotFound)
	expectMarkProcessed(mock)

	payload := buildEvent(t, "evt_upd_2", "customer.subscription.updated", map[string]interface{}{
		"id":     "sub_unknown",
		"status": "active",
	})

	resp := postWebhook(t, payload, signPayload(payload, testWebhookSecret))

	// Acknowledged as a no-op, no row is created
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripeWebhookHandler_SubscriptionDeleted(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	expectEventNotProcessed(mock, "evt_del_1")
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "subscriptions" SET (.+) WHERE stripe_subscription_id = (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectMarkProcessed(mock)

	payload := buildEvent(t, "evt_del_1", "customer.subscription.deleted", map[string]interface{}{
		"id":     "sub_1",
		"status": "canceled",
	})

	resp := postWebhook(t, payload, signPayload(payload, testWebhookSecret))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripeWebhookHandler_SubscriptionDeletedUnknownHandle(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	expectEventNotProcessed(mock, "evt_del_2")
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "subscriptions" SET (.+) WHERE stripe_subscription_id = (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	expectMarkProcessed(mock)

	payload := buildEvent(t, "evt_del_2", "customer.subscription.deleted", map[string]interface{}{
		"id":     "sub_ghost",
		"status": "canceled",
	})

	resp := postWebhook(t, payload, signPayload(payload, testWebhookSecret))

	// Unknown handle: acknowledged, nothing created, no error surfaced
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripeWebhookHandler_IgnoredEventType(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	expectEventNotProcessed(mock, "evt_other")

	payload := buildEvent(t, "evt_other", "invoice.payment_succeeded", map[string]interface{}{
		"id": "in_1",
	})

	resp := postWebhook(t, payload, signPayload(payload, testWebhookSecret))

	assert.Equal(t, http.StatusOK, resp.Code)

	var respBody map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &respBody)
	assert.Equal(t, "Event ignored", respBody["message"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Two checkout sessions for the same user overwrite the same row, so
// whichever event is applied last fully determines the record: the row
// can never mix fields of two plans.
func TestStripeWebhookHandler_SecondCheckoutOverwritesFirst(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	userID := "11111111-1111-1111-1111-111111111111"

	for _, eventID := range []string{"evt_first", "evt_second"} {
		expectEventNotProcessed(mock, eventID)
		mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = (.+)`).
			WithArgs(userID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(userID, "parent@example.com"))
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "subscriptions" (.+) ON CONFLICT (.+) RETURNING "id"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("sub-row-uuid"))
		mock.ExpectCommit()
		expectMarkProcessed(mock)
	}

	first := buildEvent(t, "evt_first", "checkout.session.completed",
		checkoutSessionObject(userID, "PRO", "price_1QKatProMonthly999", "sub_1"))
	second := buildEvent(t, "evt_second", "checkout.session.completed",
		checkoutSessionObject(userID, "FAMILY", "price_1QKatFamilyMonthly499", "sub_2"))

	resp := postWebhook(t, first, signPayload(first, testWebhookSecret))
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = postWebhook(t, second, signPayload(second, testWebhookSecret))
	assert.Equal(t, http.StatusOK, resp.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}
