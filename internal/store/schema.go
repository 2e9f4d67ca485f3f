package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names shared by the repositories.
const (
	usersTable     = "users"
	questionsTable = "questions"
	resultsTable   = "results"
	sessionsTable  = "quiz_sessions"
	llmTable       = "llm_requests"
)

// All timestamps are stored as Unix milliseconds in INTEGER columns.
var (
	usersColumns = []*schema.Column{
		{Name: "identity", Type: field.TypeString, Unique: true},
		{Name: "display_name", Type: field.TypeString, Default: ""},
		{Name: "joined_at", Type: field.TypeInt64},
		{Name: "premium_until", Type: field.TypeInt64, Nullable: true},
	}
	usersSchema = &schema.Table{
		Name:       usersTable,
		Columns:    usersColumns,
		PrimaryKey: []*schema.Column{usersColumns[0]},
	}

	questionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "kind", Type: field.TypeString},
		{Name: "skill", Type: field.TypeString},
		{Name: "level", Type: field.TypeString},
		{Name: "text", Type: field.TypeString, Size: 2147483647},
		{Name: "options", Type: field.TypeString, Size: 2147483647},
		{Name: "correct_index", Type: field.TypeInt},
		{Name: "media_path", Type: field.TypeString, Default: ""},
		{Name: "media_kind", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeInt64},
	}
	questionsSchema = &schema.Table{
		Name:       questionsTable,
		Columns:    questionsColumns,
		PrimaryKey: []*schema.Column{questionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "question_kind", Columns: []*schema.Column{questionsColumns[1]}},
			{Name: "question_skill_level", Columns: []*schema.Column{questionsColumns[2], questionsColumns[3]}},
		},
	}

	resultsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "identity", Type: field.TypeString},
		{Name: "mode", Type: field.TypeString},
		{Name: "score", Type: field.TypeInt},
		{Name: "total", Type: field.TypeInt},
		{Name: "level", Type: field.TypeString},
		{Name: "finished_at", Type: field.TypeInt64},
	}
	resultsSchema = &schema.Table{
		Name:       resultsTable,
		Columns:    resultsColumns,
		PrimaryKey: []*schema.Column{resultsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "result_identity_mode_finished", Columns: []*schema.Column{resultsColumns[1], resultsColumns[2], resultsColumns[6]}},
			{Name: "result_finished", Columns: []*schema.Column{resultsColumns[6]}},
		},
	}

	sessionsColumns = []*schema.Column{
		{Name: "identity", Type: field.TypeString, Unique: true},
		{Name: "payload", Type: field.TypeBytes},
		{Name: "deadline", Type: field.TypeInt64},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	sessionsSchema = &schema.Table{
		Name:       sessionsTable,
		Columns:    sessionsColumns,
		PrimaryKey: []*schema.Column{sessionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "quiz_session_deadline", Columns: []*schema.Column{sessionsColumns[2]}},
		},
	}

	llmColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeInt64},
	}
	llmSchema = &schema.Table{
		Name:       llmTable,
		Columns:    llmColumns,
		PrimaryKey: []*schema.Column{llmColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llm_request_purpose", Columns: []*schema.Column{llmColumns[3]}},
		},
	}

	// tables lists every table created by the auto-migration.
	tables = []*schema.Table{
		usersSchema,
		questionsSchema,
		resultsSchema,
		sessionsSchema,
		llmSchema,
	}
)
