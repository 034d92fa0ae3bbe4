package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ParseProcessingResult decodes a model response into a ProcessingResult and
// fills the defaults the model is allowed to leave out. The model output is
// trusted for content but not for completeness, so every field it may omit
// gets a sane value here rather than leaking zero values to the dashboard.
func ParseProcessingResult(data []byte) (*ProcessingResult, error) {
	var result ProcessingResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("model returned malformed JSON: %w", err)
	}
	result.Normalize()
	return &result, nil
}

// Normalize fills in defaults for fields the model omitted or filled with
// out-of-range values.
func (r *ProcessingResult) Normalize() {
	for i := range r.TranscriptSegments {
		seg := &r.TranscriptSegments[i]
		if seg.Speaker == "" {
			seg.Speaker = "Unknown"
		}
		if seg.Timestamp == "" {
			seg.Timestamp = "00:00"
		}
		if seg.Language == "" {
			seg.Language = "Unknown"
		}
		if seg.LanguageCode == "" {
			seg.LanguageCode = "un"
		}
		if !seg.Emotion.Valid() {
			seg.Emotion = EmotionNeutral
		}
	}

	doc := &r.Documentation
	if doc.ChiefComplaints == nil {
		doc.ChiefComplaints = []string{}
	}
	if doc.Symptoms == nil {
		doc.Symptoms = []Symptom{}
	}
	if doc.VitalSigns == nil {
		doc.VitalSigns = []VitalSign{}
	}
	if doc.Diagnoses == nil {
		doc.Diagnoses = []Diagnosis{}
	}
	if doc.Medications == nil {
		doc.Medications = []Medication{}
	}
	if doc.Procedures == nil {
		doc.Procedures = []string{}
	}
	if doc.Instructions == nil {
		doc.Instructions = []string{}
	}
	if doc.InsuranceAudit == nil {
		doc.InsuranceAudit = []InsuranceIssue{}
	}
	for i := range doc.Medications {
		if doc.Medications[i].Route == "" {
			doc.Medications[i].Route = "oral"
		}
	}

	if r.TranscriptSegments == nil {
		r.TranscriptSegments = []TranscriptSegment{}
	}
	if r.NurseTasks == nil {
		r.NurseTasks = []NurseTask{}
	}
	for i := range r.NurseTasks {
		task := &r.NurseTasks[i]
		if task.TaskID == "" {
			task.TaskID = uuid.NewString()[:8]
		}
		if !task.Priority.Valid() {
			task.Priority = PriorityMedium
		}
		if task.TaskType == "" {
			task.TaskType = "other"
		}
		if !task.Status.Valid() {
			task.Status = StatusPending
		}
	}
}
