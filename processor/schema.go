package processor

import "encoding/json"

// responseSchema constrains Gemini's structured output to the shapes in the
// models package. Field names and enums must stay in sync with the json
// tags there.
var responseSchema = json.RawMessage(`{
  "type": "OBJECT",
  "properties": {
    "summary": {
      "type": "STRING",
      "description": "A concise 2-3 sentence summary of the conversation"
    },
    "transcript_segments": {
      "type": "ARRAY",
      "description": "List of transcribed segments with speaker and timestamp",
      "items": {
        "type": "OBJECT",
        "properties": {
          "speaker": {"type": "STRING"},
          "timestamp": {"type": "STRING"},
          "content": {"type": "STRING"},
          "language": {"type": "STRING"},
          "language_code": {"type": "STRING"},
          "translation": {"type": "STRING", "nullable": true},
          "emotion": {"type": "STRING", "enum": ["happy", "sad", "angry", "neutral", "concerned", "calm"]}
        },
        "required": ["speaker", "timestamp", "content", "language", "language_code", "emotion"]
      }
    },
    "documentation": {
      "type": "OBJECT",
      "description": "Structured medical documentation",
      "properties": {
        "patient_info": {
          "type": "OBJECT",
          "properties": {
            "name": {"type": "STRING", "nullable": true},
            "age": {"type": "STRING", "nullable": true},
            "gender": {"type": "STRING", "nullable": true},
            "bed_number": {"type": "STRING", "nullable": true},
            "admission_date": {"type": "STRING", "nullable": true}
          }
        },
        "chief_complaints": {"type": "ARRAY", "items": {"type": "STRING"}},
        "symptoms": {
          "type": "ARRAY",
          "items": {
            "type": "OBJECT",
            "properties": {
              "name": {"type": "STRING"},
              "severity": {"type": "STRING", "nullable": true},
              "duration": {"type": "STRING", "nullable": true},
              "notes": {"type": "STRING", "nullable": true}
            },
            "required": ["name"]
          }
        },
        "vital_signs": {
          "type": "ARRAY",
          "items": {
            "type": "OBJECT",
            "properties": {
              "type": {"type": "STRING"},
              "value": {"type": "STRING"},
              "time": {"type": "STRING", "nullable": true},
              "notes": {"type": "STRING", "nullable": true}
            },
            "required": ["type", "value"]
          }
        },
        "diagnoses": {
          "type": "ARRAY",
          "items": {
            "type": "OBJECT",
            "properties": {
              "condition": {"type": "STRING"},
              "icd_code": {"type": "STRING", "nullable": true},
              "confidence": {"type": "STRING", "nullable": true},
              "notes": {"type": "STRING", "nullable": true}
            },
            "required": ["condition"]
          }
        },
        "medications": {
          "type": "ARRAY",
          "items": {
            "type": "OBJECT",
            "properties": {
              "drug_name": {"type": "STRING"},
              "dosage": {"type": "STRING"},
              "frequency": {"type": "STRING"},
              "route": {"type": "STRING", "nullable": true},
              "duration": {"type": "STRING", "nullable": true},
              "instructions": {"type": "STRING", "nullable": true}
            },
            "required": ["drug_name", "dosage", "frequency"]
          }
        },
        "procedures": {"type": "ARRAY", "items": {"type": "STRING"}},
        "instructions": {"type": "ARRAY", "items": {"type": "STRING"}},
        "follow_up": {"type": "STRING", "nullable": true},
        "notes": {"type": "STRING", "nullable": true},
        "insurance_audit": {
          "type": "ARRAY",
          "description": "List of potential insurance claim rejection risks",
          "items": {
            "type": "OBJECT",
            "properties": {
              "severity": {"type": "STRING", "enum": ["HIGH", "MEDIUM", "LOW"]},
              "rule_violated": {"type": "STRING"},
              "missing_evidence": {"type": "STRING"},
              "suggestion": {"type": "STRING"}
            },
            "required": ["severity", "rule_violated", "missing_evidence", "suggestion"]
          }
        },
        "nurse_handover": {
          "type": "OBJECT",
          "description": "Structured SBAR summary for shift handover",
          "nullable": true,
          "properties": {
            "summary_sbar": {"type": "STRING"},
            "critical_alerts": {"type": "ARRAY", "items": {"type": "STRING"}},
            "pending_actions": {"type": "ARRAY", "items": {"type": "STRING"}}
          },
          "required": ["summary_sbar", "critical_alerts", "pending_actions"]
        },
        "patient_summary": {
          "type": "OBJECT",
          "description": "Patient-facing summary for WhatsApp",
          "nullable": true,
          "properties": {
            "translated_content": {"type": "STRING"},
            "whatsapp_message": {"type": "STRING"}
          },
          "required": ["translated_content", "whatsapp_message"]
        }
      },
      "required": ["patient_info", "chief_complaints", "symptoms", "vital_signs", "diagnoses", "medications", "procedures", "instructions"]
    },
    "nurse_tasks": {
      "type": "ARRAY",
      "description": "List of actionable tasks for nurses",
      "items": {
        "type": "OBJECT",
        "properties": {
          "task_id": {"type": "STRING"},
          "description": {"type": "STRING"},
          "priority": {"type": "STRING", "enum": ["HIGH", "MEDIUM", "LOW"]},
          "task_type": {"type": "STRING"},
          "due_time": {"type": "STRING", "nullable": true},
          "due_minutes": {"type": "INTEGER", "nullable": true},
          "patient_identifier": {"type": "STRING", "nullable": true},
          "medication_details": {
            "type": "OBJECT",
            "nullable": true,
            "properties": {
              "drug_name": {"type": "STRING"},
              "dosage": {"type": "STRING"},
              "frequency": {"type": "STRING"},
              "route": {"type": "STRING", "nullable": true}
            }
          },
          "status": {"type": "STRING", "enum": ["PENDING", "IN_PROGRESS", "COMPLETED"]},
          "notes": {"type": "STRING", "nullable": true}
        },
        "required": ["task_id", "description", "priority", "task_type", "status"]
      }
    }
  },
  "required": ["summary", "transcript_segments", "documentation", "nurse_tasks"]
}`)
