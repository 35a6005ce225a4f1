package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Event types pushed by the provider that this application acts on. All other
// types are acknowledged and ignored.
const (
	EventCheckoutCompleted = "checkout.session.completed"
)

// DefaultTolerance bounds how old a webhook timestamp may be before the
// delivery is rejected as a potential replay.
const DefaultTolerance = 5 * time.Minute

// ErrBadSignature is returned when a webhook payload fails authenticity
// verification. Deliveries failing verification are rejected wholesale; the
// provider's redelivery policy handles retry.
var ErrBadSignature = errors.New("webhook signature verification failed")

// Event is the envelope of a provider push notification.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Session decodes the event payload as a checkout session. Valid only for
// checkout.* event types.
func (e *Event) Session() (*CheckoutSession, error) {
	var s CheckoutSession
	if err := json.Unmarshal(e.Data.Object, &s); err != nil {
		return nil, fmt.Errorf("decode session payload: %w", err)
	}
	return &s, nil
}

// ParseEvent verifies the signature header against the raw payload and, on
// success, decodes the event. It fails closed: any malformed header, stale
// timestamp, or digest mismatch yields ErrBadSignature.
//
// The header format is "t=<unix>,v1=<hex hmac>[,v1=<hex hmac>…]" and the
// signed message is "<unix>.<payload>" under HMAC-SHA256 with the endpoint
// secret. Multiple v1 entries occur during secret rotation; any match passes.
func ParseEvent(payload []byte, sigHeader, secret string, tolerance time.Duration, now time.Time) (*Event, error) {
	ts, sigs, err := parseSigHeader(sigHeader)
	if err != nil {
		return nil, ErrBadSignature
	}

	if tolerance > 0 {
		age := now.Sub(time.Unix(ts, 0))
		if age > tolerance || age < -tolerance {
			return nil, ErrBadSignature
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	ok := false
	for _, s := range sigs {
		sig, err := hex.DecodeString(s)
		if err != nil {
			continue
		}
		if hmac.Equal(sig, expected) {
			ok = true
			break
		}
	}
	if !ok {
		return nil, ErrBadSignature
	}

	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &ev, nil
}

// Sign produces a valid signature header for payload at the given time.
// Exported for tests and local tooling that simulate provider deliveries.
func Sign(payload []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return "t=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}

// parseSigHeader splits "t=…,v1=…,v1=…" into the timestamp and candidate
// signatures. Unknown schemes are skipped.
func parseSigHeader(h string) (ts int64, sigs []string, err error) {
	tsSeen := false
	for _, part := range strings.Split(h, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			ts, err = strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, nil, err
			}
			tsSeen = true
		case "v1":
			sigs = append(sigs, v)
		}
	}
	if !tsSeen || len(sigs) == 0 {
		return 0, nil, errors.New("missing signature elements")
	}
	return ts, sigs, nil
}
