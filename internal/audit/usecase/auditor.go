package usecase

import (
	"context"
	"fmt"
	"time"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
)

// Auditor adds typed logging helpers on top of a Pipeline.
type Auditor struct {
	Pipeline
}

// NewAuditor wraps pipeline.
func NewAuditor(pipeline Pipeline) *Auditor {
	return &Auditor{Pipeline: pipeline}
}

func outcomeOf(success bool) auditDomain.Outcome {
	if success {
		return auditDomain.OutcomeSuccess
	}
	return auditDomain.OutcomeFailure
}

// LogAuthentication records a login, logout or token check. Failures are medium severity.
func (a *Auditor) LogAuthentication(
	ctx context.Context,
	actor auditDomain.Actor,
	action string,
	success bool,
	metadata map[string]any,
) {
	severity := auditDomain.SeverityLow
	if !success {
		severity = auditDomain.SeverityMedium
	}
	a.Log(ctx, &auditDomain.EventInput{
		Type:     auditDomain.EventAuthentication,
		Severity: severity,
		Actor:    actor,
		Action:   action,
		Outcome:  outcomeOf(success),
		Metadata: metadata,
	})
}

// LogAuthorization records a permission decision.
func (a *Auditor) LogAuthorization(
	ctx context.Context,
	actor auditDomain.Actor,
	resource string,
	permissions []string,
	granted bool,
) {
	severity := auditDomain.SeverityLow
	if !granted {
		severity = auditDomain.SeverityMedium
	}
	required := make([]any, len(permissions))
	for i, p := range permissions {
		required[i] = p
	}
	a.Log(ctx, &auditDomain.EventInput{
		Type:     auditDomain.EventAuthorization,
		Severity: severity,
		Actor:    actor,
		Action:   "authorize",
		Resource: resource,
		Outcome:  outcomeOf(granted),
		Metadata: map[string]any{"permissions": required},
	})
}

// LogDataAccess records a read or change of a resource with optional snapshots.
func (a *Auditor) LogDataAccess(
	ctx context.Context,
	actor auditDomain.Actor,
	action, resource string,
	before, after map[string]any,
) {
	a.Log(ctx, &auditDomain.EventInput{
		Type:     auditDomain.EventDataAccess,
		Severity: auditDomain.SeverityLow,
		Actor:    actor,
		Action:   action,
		Resource: resource,
		Outcome:  auditDomain.OutcomeSuccess,
		Before:   before,
		After:    after,
	})
}

// LogSecurityEvent records a security-relevant occurrence at the given severity.
func (a *Auditor) LogSecurityEvent(
	ctx context.Context,
	actor auditDomain.Actor,
	action string,
	severity auditDomain.Severity,
	metadata map[string]any,
) {
	a.Log(ctx, &auditDomain.EventInput{
		Type:     auditDomain.EventSecurity,
		Severity: severity,
		Actor:    actor,
		Action:   action,
		Metadata: metadata,
	})
}

// LogAPIUsage records one API call. 4xx responses are failures, 5xx responses are errors.
func (a *Auditor) LogAPIUsage(
	ctx context.Context,
	actor auditDomain.Actor,
	method, endpoint string,
	statusCode int,
	duration time.Duration,
) {
	input := &auditDomain.EventInput{
		Type:     auditDomain.EventAPIUsage,
		Severity: auditDomain.SeverityLow,
		Actor:    actor,
		Action:   method,
		Endpoint: endpoint,
		Outcome:  outcomeOf(statusCode < 400),
		Metadata: map[string]any{
			"statusCode": statusCode,
			"durationMs": duration.Milliseconds(),
		},
	}
	if statusCode >= 500 {
		input.Severity = auditDomain.SeverityMedium
		input.Error = fmt.Sprintf("HTTP %d", statusCode)
	}
	a.Log(ctx, input)
}

// LogSystemError records an internal failure of component.
func (a *Auditor) LogSystemError(
	ctx context.Context,
	component string,
	err error,
	severity auditDomain.Severity,
) {
	message := "unknown error"
	if err != nil {
		message = err.Error()
	}
	a.Log(ctx, &auditDomain.EventInput{
		Type:     auditDomain.EventSystemError,
		Severity: severity,
		Action:   component,
		Outcome:  auditDomain.OutcomeFailure,
		Error:    message,
	})
}

// LogWebhook records an inbound or outbound webhook delivery.
func (a *Auditor) LogWebhook(
	ctx context.Context,
	source, event string,
	success bool,
	metadata map[string]any,
) {
	severity := auditDomain.SeverityLow
	if !success {
		severity = auditDomain.SeverityMedium
	}
	a.Log(ctx, &auditDomain.EventInput{
		Type:     auditDomain.EventWebhook,
		Severity: severity,
		Action:   event,
		Resource: source,
		Outcome:  outcomeOf(success),
		Metadata: metadata,
	})
}

// LogKeyEvent records an API key lifecycle change.
func (a *Auditor) LogKeyEvent(
	ctx context.Context,
	actor auditDomain.Actor,
	action, keyID string,
	success bool,
	metadata map[string]any,
) {
	a.Log(ctx, &auditDomain.EventInput{
		Type:     auditDomain.EventKeyManagement,
		Severity: auditDomain.SeverityMedium,
		Actor:    actor,
		Action:   action,
		Resource: keyID,
		Outcome:  outcomeOf(success),
		Metadata: metadata,
	})
}

// LogUserEvent records a user account change with before/after snapshots.
func (a *Auditor) LogUserEvent(
	ctx context.Context,
	actor auditDomain.Actor,
	action, userID string,
	before, after map[string]any,
) {
	a.Log(ctx, &auditDomain.EventInput{
		Type:     auditDomain.EventUserManagement,
		Severity: auditDomain.SeverityMedium,
		Actor:    actor,
		Action:   action,
		Resource: userID,
		Outcome:  auditDomain.OutcomeSuccess,
		Before:   before,
		After:    after,
	})
}
