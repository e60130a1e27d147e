package certificateverify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"certverify/internal/common/camunda"
	"certverify/internal/common/errors"
	"certverify/internal/common/logger"
	"certverify/internal/common/metrics"
	"certverify/internal/common/validation"
	"certverify/internal/verifier"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "certificate-verify"
)

// VerificationService is implemented by verifier.Verifier.
type VerificationService interface {
	Verify(ctx context.Context, ref, referenceRef string) (*verifier.Report, error)
}

var inputSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"documentUrl":  {Type: "string", Description: "URL of the certificate to verify"},
		"documentPath": {Type: "string", Description: "worker-local path of the certificate"},
		"referenceUrl": {Type: "string", Description: "optional known-good document to fingerprint against"},
	},
	AdditionalProperties: true,
}

type Handler struct {
	service VerificationService
	timeout time.Duration
	logger  logger.Logger
}

var _ camunda.JobHandler = (*Handler)(nil)

func NewHandler(config *Config, service VerificationService, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		timeout: config.Timeout,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	input, err := h.parseInput(job.Variables)
	if err != nil {
		h.failJob(client, job, "PARSE_ERROR", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(client, job, "VERIFICATION_FAILED", err.Error())
		return
	}

	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) parseInput(variables string) (*Input, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &raw); err != nil {
		return nil, errors.NewInputParsingFailedError(fmt.Errorf("parse input: %w", err))
	}

	if result := validation.ValidateInput(raw, inputSchema); !result.Valid {
		return nil, errors.NewValidationFailedError("invalid input: " + strings.Join(result.GetErrorMessages(), "; "))
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInputParsingFailedError(fmt.Errorf("parse input: %w", err))
	}
	if input.Ref() == "" {
		return nil, errors.NewValidationFailedError("invalid input: documentUrl or documentPath is required")
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	report, err := h.service.Verify(ctx, input.Ref(), input.ReferenceURL)
	if err != nil {
		return nil, err
	}

	output := outputFromReport(report)
	h.logger.Info("verification finished", map[string]interface{}{
		"status":          output.Status,
		"forensicVerdict": output.ForensicVerdict,
		"cached":          output.Cached,
	})
	return output, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
