// Package agenda keeps task lists, notes and dated events in one JSON
// document (data.json):
//
//	{
//	  "task_lists": {
//	    "Maison": {
//	      "tasks": [
//	        {"id": "…", "title": "Courses", "time": "2024-01-15 18:00", "notified": false, "completed": false}
//	      ]
//	    }
//	  },
//	  "notes": {"Idées": "…"},
//	  "schedule": {},
//	  "events": [
//	    {"id": "…", "title": "Réunion", "date": "2024-01-20", "time": "14:00", "description": "", "notified": false}
//	  ]
//	}
//
// # Validation
//
// Documents are checked against a bundled JSON schema when loaded. The
// schema covers structure only; ValidateDocument additionally applies the
// field rules (time layouts, UUID ids) used when records are created.
//
// # Reminders
//
// DueReminders reports tasks whose time has come and events dated today,
// each once: reported records are marked notified and the document saved.
package agenda
