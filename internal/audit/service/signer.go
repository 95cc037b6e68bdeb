package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
)

const signingKeyInfo = "audit-event-signing-v1"

// EventSigner computes tamper-evident HMAC-SHA256 signatures over audit events.
type EventSigner struct {
	key []byte
}

// NewEventSigner derives the signing key from secret with HKDF-SHA256.
func NewEventSigner(secret []byte) (*EventSigner, error) {
	reader := hkdf.New(sha256.New, secret, nil, []byte(signingKeyInfo))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	return &EventSigner{key: key}, nil
}

// Sign returns the signature of the event's canonical form. Signature itself is excluded.
func (s *EventSigner) Sign(event *auditDomain.Event) ([]byte, error) {
	canonical, err := canonicalizeEvent(event)
	if err != nil {
		return nil, err
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify checks event.Signature. Returns ErrSignatureInvalid on mismatch.
func (s *EventSigner) Verify(event *auditDomain.Event) error {
	expected, err := s.Sign(event)
	if err != nil {
		return err
	}
	if !hmac.Equal(event.Signature, expected) {
		return auditDomain.ErrSignatureInvalid
	}
	return nil
}

// canonicalizeEvent builds a length-prefixed byte form:
// id || timestamp || type || severity || actor || action || resource || endpoint ||
// outcome || error || before || after || metadata
func canonicalizeEvent(event *auditDomain.Event) ([]byte, error) {
	buf := make([]byte, 0, 512)
	buf = append(buf, event.ID[:]...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(event.Timestamp.UnixMicro()))

	for _, field := range []string{
		string(event.Type),
		string(event.Severity),
		event.Actor.UserID,
		event.Actor.SessionID,
		event.Actor.IPAddress,
		event.Actor.UserAgent,
		event.Action,
		event.Resource,
		event.Endpoint,
		string(event.Outcome),
		event.Error,
	} {
		buf = appendLengthPrefixed(buf, []byte(field))
	}

	for _, data := range []map[string]any{event.Before, event.After, event.Metadata} {
		if len(data) == 0 {
			buf = appendLengthPrefixed(buf, nil)
			continue
		}
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event payload: %w", err)
		}
		buf = appendLengthPrefixed(buf, encoded)
	}
	return buf, nil
}

func appendLengthPrefixed(buf, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}
