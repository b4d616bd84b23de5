package main

import (
	"context"

	"lexdraft-backend/config"
	"lexdraft-backend/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Statements run in order; every one is idempotent.
var schema = []struct {
	name string
	sql  string
}{
	{"pgcrypto extension", `CREATE EXTENSION IF NOT EXISTS pgcrypto`},
	{"users", `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email VARCHAR(255) NOT NULL UNIQUE,
    password_hash VARCHAR(255) NOT NULL,
    name VARCHAR(255) NOT NULL,
    oab_number VARCHAR(20),
    oab_state VARCHAR(2),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`},
	{"cases", `
CREATE TABLE IF NOT EXISTS cases (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    legal_area VARCHAR(50) NOT NULL DEFAULT 'civil',
    title VARCHAR(500) NOT NULL,
    description TEXT,
    process_number VARCHAR(50),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`},
	{"cases index", `CREATE INDEX IF NOT EXISTS idx_cases_user ON cases(user_id, created_at DESC)`},
	{"legal_documents", `
CREATE TABLE IF NOT EXISTS legal_documents (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    case_id UUID NOT NULL REFERENCES cases(id) ON DELETE RESTRICT,
    piece_type VARCHAR(100) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'draft'
        CHECK (status IN ('draft', 'generated', 'revised', 'finalized')),
    current_version_id UUID,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`},
	{"legal_documents index", `CREATE INDEX IF NOT EXISTS idx_documents_case ON legal_documents(case_id)`},
	{"document_versions", `
CREATE TABLE IF NOT EXISTS document_versions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    document_id UUID NOT NULL REFERENCES legal_documents(id) ON DELETE RESTRICT,
    version_number INTEGER NOT NULL CHECK (version_number > 0),
    created_by VARCHAR(10) NOT NULL CHECK (created_by IN ('human', 'agent')),
    agent_name VARCHAR(100),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (document_id, version_number)
)`},
	{"current version fk", `
DO $$ BEGIN
    ALTER TABLE legal_documents
        ADD CONSTRAINT fk_documents_current_version
        FOREIGN KEY (current_version_id) REFERENCES document_versions(id);
EXCEPTION WHEN duplicate_object THEN NULL;
END $$`},
	{"version immutability trigger function", `
CREATE OR REPLACE FUNCTION forbid_version_mutation() RETURNS trigger AS $$
BEGIN
    RAISE EXCEPTION 'document_versions is append-only (%)', TG_OP;
END;
$$ LANGUAGE plpgsql`},
	{"version immutability trigger", `
DO $$ BEGIN
    CREATE TRIGGER trg_document_versions_immutable
        BEFORE UPDATE OR DELETE ON document_versions
        FOR EACH ROW EXECUTE FUNCTION forbid_version_mutation();
EXCEPTION WHEN duplicate_object THEN NULL;
END $$`},
	{"legal_sources", `
CREATE TABLE IF NOT EXISTS legal_sources (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    source_type VARCHAR(20) NOT NULL
        CHECK (source_type IN ('constituicao', 'lei', 'jurisprudencia', 'doutrina', 'argumentacao')),
    reference VARCHAR(500) NOT NULL,
    excerpt TEXT NOT NULL DEFAULT '',
    url TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`},
	{"legal_sources dedupe index", `
CREATE UNIQUE INDEX IF NOT EXISTS uq_legal_sources_identity
    ON legal_sources(source_type, reference, md5(excerpt))`},
	{"legal_sources reference index", `CREATE INDEX IF NOT EXISTS idx_sources_reference ON legal_sources(reference)`},
	{"legal_assertions", `
CREATE TABLE IF NOT EXISTS legal_assertions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    document_version_id UUID NOT NULL REFERENCES document_versions(id) ON DELETE RESTRICT,
    text TEXT NOT NULL,
    assertion_type VARCHAR(20) NOT NULL CHECK (assertion_type IN ('fato', 'tese', 'fundamento', 'pedido')),
    confidence_level VARCHAR(10) NOT NULL DEFAULT 'medio' CHECK (confidence_level IN ('alto', 'medio', 'baixo')),
    position INTEGER NOT NULL CHECK (position > 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (document_version_id, position)
)`},
	{"assertion_sources", `
CREATE TABLE IF NOT EXISTS assertion_sources (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    assertion_id UUID NOT NULL REFERENCES legal_assertions(id) ON DELETE CASCADE,
    source_id UUID NOT NULL REFERENCES legal_sources(id) ON DELETE RESTRICT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (assertion_id, source_id)
)`},
	{"document_renderings", `
CREATE TABLE IF NOT EXISTS document_renderings (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    document_version_id UUID NOT NULL REFERENCES document_versions(id) ON DELETE CASCADE,
    format VARCHAR(10) NOT NULL CHECK (format IN ('markdown', 'html', 'docx', 'pdf')),
    rendered_text TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (document_version_id, format)
)`},
	{"activity_logs", `
CREATE TABLE IF NOT EXISTS activity_logs (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID REFERENCES users(id) ON DELETE SET NULL,
    action VARCHAR(50) NOT NULL,
    entity_type VARCHAR(20) NOT NULL,
    entity_id UUID NOT NULL,
    details JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`},
	{"activity_logs entity index", `CREATE INDEX IF NOT EXISTS idx_activity_entity ON activity_logs(entity_type, entity_id, created_at DESC)`},
	{"activity_logs user index", `CREATE INDEX IF NOT EXISTS idx_activity_user ON activity_logs(user_id, created_at DESC)`},
	{"document_attachments", `
CREATE TABLE IF NOT EXISTS document_attachments (
    id UUID PRIMARY KEY,
    case_id UUID NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
    file_name VARCHAR(255) NOT NULL,
    mime_type VARCHAR(100) NOT NULL,
    file_size BIGINT NOT NULL,
    storage_path TEXT NOT NULL,
    uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`},
}

func main() {
	cfg, _ := config.Load()
	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer pool.Close()

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt.sql); err != nil {
			log.Fatal("Failed to apply schema", "step", stmt.name, "error", err)
		}
		log.Info("Applied", "step", stmt.name)
	}
	log.Info("Schema ready", "statements", len(schema))
}
