package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/domain"
	ports "github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/ports/output"
)

const schema = `
	CREATE TABLE IF NOT EXISTS model_deployment (
		id              UUID PRIMARY KEY,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL,
		name            TEXT NOT NULL,
		namespace       TEXT NOT NULL,
		source_file     TEXT NOT NULL DEFAULT '',
		artifact_path   TEXT NOT NULL,
		image           TEXT NOT NULL,
		replicas        INTEGER NOT NULL DEFAULT 1,
		status          TEXT NOT NULL,
		status_message  TEXT NOT NULL DEFAULT '',
		deployment_name TEXT NOT NULL,
		service_name    TEXT NOT NULL,
		UNIQUE (namespace, name)
	)
`

const deploymentColumns = `
	id, created_at, updated_at, name, namespace, source_file, artifact_path,
	image, replicas, status, status_message, deployment_name, service_name
`

type deploymentRepo struct {
	pool *pgxpool.Pool
}

func NewDeploymentRepository(pool *pgxpool.Pool) ports.DeploymentRepository {
	return &deploymentRepo{pool: pool}
}

// EnsureSchema creates the model_deployment table if it is missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create model_deployment table: %w", err)
	}
	return nil
}

func (r *deploymentRepo) Create(ctx context.Context, d *domain.ModelDeployment) error {
	query := `
		INSERT INTO model_deployment
			(id, created_at, updated_at, name, namespace, source_file, artifact_path,
			 image, replicas, status, status_message, deployment_name, service_name)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`
	_, err := r.pool.Exec(ctx, query,
		d.ID, d.CreatedAt, d.UpdatedAt, d.Name, d.Namespace, d.SourceFile,
		d.ArtifactPath, d.Image, d.Replicas, string(d.Status), d.StatusMessage,
		d.DeploymentName, d.ServiceName,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDeploymentExists
		}
		return fmt.Errorf("create model deployment: %w", err)
	}
	return nil
}

func (r *deploymentRepo) GetByName(ctx context.Context, namespace, name string) (*domain.ModelDeployment, error) {
	query := `SELECT ` + deploymentColumns + ` FROM model_deployment WHERE namespace = $1 AND name = $2`

	d, err := scanDeployment(r.pool.QueryRow(ctx, query, namespace, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDeploymentNotFound
		}
		return nil, fmt.Errorf("get model deployment: %w", err)
	}
	return d, nil
}

func (r *deploymentRepo) Update(ctx context.Context, d *domain.ModelDeployment) error {
	query := `
		UPDATE model_deployment
		SET replicas=$1, status=$2, status_message=$3, image=$4,
			artifact_path=$5, updated_at=NOW()
		WHERE id=$6
	`
	result, err := r.pool.Exec(ctx, query,
		d.Replicas, string(d.Status), d.StatusMessage, d.Image, d.ArtifactPath, d.ID,
	)
	if err != nil {
		return fmt.Errorf("update model deployment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrDeploymentNotFound
	}
	return nil
}

func (r *deploymentRepo) Delete(ctx context.Context, namespace, name string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM model_deployment WHERE namespace = $1 AND name = $2`, namespace, name)
	if err != nil {
		return fmt.Errorf("delete model deployment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrDeploymentNotFound
	}
	return nil
}

func (r *deploymentRepo) List(ctx context.Context, namespace string) ([]*domain.ModelDeployment, error) {
	query := `SELECT ` + deploymentColumns + ` FROM model_deployment`
	args := []interface{}{}
	if namespace != "" {
		query += ` WHERE namespace = $1`
		args = append(args, namespace)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list model deployments: %w", err)
	}
	defer rows.Close()

	var items []*domain.ModelDeployment
	for rows.Next() {
		d, err := scanDeployment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan model deployment: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func scanDeployment(row pgx.Row) (*domain.ModelDeployment, error) {
	var d domain.ModelDeployment
	var status string
	err := row.Scan(
		&d.ID, &d.CreatedAt, &d.UpdatedAt, &d.Name, &d.Namespace, &d.SourceFile,
		&d.ArtifactPath, &d.Image, &d.Replicas, &status, &d.StatusMessage,
		&d.DeploymentName, &d.ServiceName,
	)
	if err != nil {
		return nil, err
	}
	d.Status = domain.DeploymentStatus(status)
	return &d, nil
}

// Ensure interface compliance
var _ ports.DeploymentRepository = (*deploymentRepo)(nil)
