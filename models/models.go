package models

// Priority orders nurse tasks by clinical urgency.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// TaskStatus is the lifecycle state of a nurse task. The server never stores
// tasks, so status only travels client -> ack.
type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
)

// Valid reports whether s is one of the known task states.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Emotion is the speaker emotion detected by the model for a segment.
type Emotion string

const (
	EmotionHappy     Emotion = "happy"
	EmotionSad       Emotion = "sad"
	EmotionAngry     Emotion = "angry"
	EmotionNeutral   Emotion = "neutral"
	EmotionConcerned Emotion = "concerned"
	EmotionCalm      Emotion = "calm"
)

// Valid reports whether e is one of the known emotions.
func (e Emotion) Valid() bool {
	switch e {
	case EmotionHappy, EmotionSad, EmotionAngry, EmotionNeutral, EmotionConcerned, EmotionCalm:
		return true
	}
	return false
}

// TranscriptSegment is a single diarized segment of the conversation.
// Speakers come from a small fixed set (Doctor, Nurse, Patient, Bystander)
// unless the model picked up an actual name.
type TranscriptSegment struct {
	Speaker      string  `json:"speaker"`
	Timestamp    string  `json:"timestamp"` // MM:SS
	Content      string  `json:"content"`
	Language     string  `json:"language"`
	LanguageCode string  `json:"language_code"` // ISO code, e.g. "ta", "hi", "en"
	Translation  string  `json:"translation,omitempty"`
	Emotion      Emotion `json:"emotion"`
}

// Symptom is a reported or observed symptom.
type Symptom struct {
	Name     string `json:"name"`
	Severity string `json:"severity,omitempty"` // mild, moderate, severe
	Duration string `json:"duration,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Diagnosis is a condition named by the doctor.
type Diagnosis struct {
	Condition  string `json:"condition"`
	ICDCode    string `json:"icd_code,omitempty"`
	Confidence string `json:"confidence,omitempty"` // confirmed, suspected, ruled_out
	Notes      string `json:"notes,omitempty"`
}

// Medication is a drug prescribed or administered during the conversation.
type Medication struct {
	DrugName     string `json:"drug_name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Route        string `json:"route,omitempty"` // oral, IV, IM, ...
	Duration     string `json:"duration,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// VitalSign is a single measurement (BP, Temperature, Pulse, SpO2, ...).
type VitalSign struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Time  string `json:"time,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// PatientInfo holds whatever demographics were mentioned in the audio.
type PatientInfo struct {
	Name          string `json:"name,omitempty"`
	Age           string `json:"age,omitempty"`
	Gender        string `json:"gender,omitempty"`
	BedNumber     string `json:"bed_number,omitempty"`
	AdmissionDate string `json:"admission_date,omitempty"`
}

// InsuranceIssue flags a documentation gap that risks claim rejection.
type InsuranceIssue struct {
	Severity        string `json:"severity"` // HIGH, MEDIUM, LOW
	RuleViolated    string `json:"rule_violated"`
	MissingEvidence string `json:"missing_evidence"`
	Suggestion      string `json:"suggestion"`
}

// NurseHandover is the SBAR summary for the next shift.
type NurseHandover struct {
	SummarySBAR    string   `json:"summary_sbar"`
	CriticalAlerts []string `json:"critical_alerts"`
	PendingActions []string `json:"pending_actions"`
}

// PatientSummary is the patient-facing summary, translated and formatted
// for WhatsApp delivery.
type PatientSummary struct {
	TranslatedContent string `json:"translated_content"`
	WhatsAppMessage   string `json:"whatsapp_message"`
}

// MedicalDocumentation is the structured clinical record extracted from
// the audio, plus the three pillar extensions.
type MedicalDocumentation struct {
	PatientInfo     PatientInfo      `json:"patient_info"`
	ChiefComplaints []string         `json:"chief_complaints"`
	Symptoms        []Symptom        `json:"symptoms"`
	VitalSigns      []VitalSign      `json:"vital_signs"`
	Diagnoses       []Diagnosis      `json:"diagnoses"`
	Medications     []Medication     `json:"medications"`
	Procedures      []string         `json:"procedures"`
	Instructions    []string         `json:"instructions"`
	FollowUp        string           `json:"follow_up,omitempty"`
	InsuranceAudit  []InsuranceIssue `json:"insurance_audit"`
	NurseHandover   *NurseHandover   `json:"nurse_handover,omitempty"`
	PatientSummary  *PatientSummary  `json:"patient_summary,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

// NurseTask is an actionable item for nursing staff. Completion is toggled
// client-side only; the server acks updates without storing them.
type NurseTask struct {
	TaskID            string      `json:"task_id"`
	Description       string      `json:"description"`
	Priority          Priority    `json:"priority"`
	TaskType          string      `json:"task_type"` // medication, vitals, procedure, monitoring, other
	DueTime           string      `json:"due_time,omitempty"`
	DueMinutes        *int        `json:"due_minutes,omitempty"`
	PatientIdentifier string      `json:"patient_identifier,omitempty"`
	MedicationDetails *Medication `json:"medication_details,omitempty"`
	Status            TaskStatus  `json:"status"`
	Notes             string      `json:"notes,omitempty"`
}

// ProcessingResult is the complete payload returned to the dashboard for
// one processed recording.
type ProcessingResult struct {
	Summary            string               `json:"summary"`
	TranscriptSegments []TranscriptSegment  `json:"transcript_segments"`
	Documentation      MedicalDocumentation `json:"documentation"`
	NurseTasks         []NurseTask          `json:"nurse_tasks"`
	ProcessingTime     float64              `json:"processing_time,omitempty"` // seconds
}
