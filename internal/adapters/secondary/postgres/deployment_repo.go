package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dashboard-packaging-service/internal/core/domain"
	ports "dashboard-packaging-service/internal/core/ports/output"
)

type deploymentRepo struct {
	pool *pgxpool.Pool
}

// NewDeploymentRepository creates a new DeploymentRepository
func NewDeploymentRepository(pool *pgxpool.Pool) ports.DeploymentRepository {
	return &deploymentRepo{pool: pool}
}

func (r *deploymentRepo) Create(ctx context.Context, dep *domain.Deployment) error {
	labelsJSON, err := json.Marshal(dep.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}

	query := `
		INSERT INTO deployment
			(id, created_at, updated_at, project_id, image_build_id, name,
			 target, external_id, namespace, desired_state, current_state,
			 health, url, health_url, last_error, labels)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = r.pool.Exec(ctx, query,
		dep.ID, dep.CreatedAt, dep.UpdatedAt,
		dep.ProjectID, dep.ImageBuildID, dep.Name,
		string(dep.Target), dep.ExternalID, dep.Namespace,
		string(dep.DesiredState), string(dep.CurrentState), string(dep.Health),
		dep.URL, dep.HealthURL, dep.LastError, labelsJSON,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDeploymentNameConflict
		}
		return fmt.Errorf("create deployment: %w", err)
	}
	return nil
}

func (r *deploymentRepo) GetByID(ctx context.Context, projectID, id uuid.UUID) (*domain.Deployment, error) {
	query := selectDeployment + ` WHERE d.id = $1 AND d.project_id = $2`

	dep, err := r.scanDeployment(r.pool.QueryRow(ctx, query, id, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDeploymentNotFound
		}
		return nil, fmt.Errorf("get deployment by id: %w", err)
	}
	return dep, nil
}

func (r *deploymentRepo) GetByExternalID(ctx context.Context, projectID uuid.UUID, externalID string) (*domain.Deployment, error) {
	query := selectDeployment + ` WHERE d.external_id = $1 AND d.project_id = $2`

	dep, err := r.scanDeployment(r.pool.QueryRow(ctx, query, externalID, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDeploymentNotFound
		}
		return nil, fmt.Errorf("get deployment by external id: %w", err)
	}
	return dep, nil
}

func (r *deploymentRepo) Update(ctx context.Context, projectID uuid.UUID, dep *domain.Deployment) error {
	labelsJSON, err := json.Marshal(dep.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}

	query := `
		UPDATE deployment
		SET external_id = $1, namespace = $2,
			desired_state = $3, current_state = $4, health = $5,
			url = $6, health_url = $7, last_error = $8, labels = $9,
			updated_at = NOW()
		WHERE id = $10 AND project_id = $11
	`

	result, err := r.pool.Exec(ctx, query,
		dep.ExternalID, dep.Namespace,
		string(dep.DesiredState), string(dep.CurrentState), string(dep.Health),
		dep.URL, dep.HealthURL, dep.LastError, labelsJSON,
		dep.ID, projectID,
	)
	if err != nil {
		return fmt.Errorf("update deployment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrDeploymentNotFound
	}
	return nil
}

func (r *deploymentRepo) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM deployment WHERE id = $1 AND project_id = $2`, id, projectID)
	if err != nil {
		return fmt.Errorf("delete deployment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrDeploymentNotFound
	}
	return nil
}

func (r *deploymentRepo) List(ctx context.Context, filter ports.DeploymentFilter) ([]*domain.Deployment, int, error) {
	where := []string{"d.project_id = $1"}
	args := []interface{}{filter.ProjectID}

	if filter.ImageBuildID != nil {
		args = append(args, *filter.ImageBuildID)
		where = append(where, fmt.Sprintf("d.image_build_id = $%d", len(args)))
	}
	if filter.Target != "" {
		args = append(args, filter.Target)
		where = append(where, fmt.Sprintf("d.target = $%d", len(args)))
	}
	if filter.CurrentState != "" {
		args = append(args, filter.CurrentState)
		where = append(where, fmt.Sprintf("d.current_state = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM deployment d WHERE ` + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count deployments: %w", err)
	}

	sortBy := "created_at"
	if filter.SortBy == "name" || filter.SortBy == "updated_at" {
		sortBy = filter.SortBy
	}
	order := "DESC"
	if strings.EqualFold(filter.Order, "asc") {
		order = "ASC"
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf("%s WHERE %s ORDER BY d.%s %s LIMIT $%d OFFSET $%d",
		selectDeployment, whereClause, sortBy, order, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list deployments: %w", err)
	}
	defer rows.Close()

	deps, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return deps, total, nil
}

func (r *deploymentRepo) ListRunning(ctx context.Context) ([]*domain.Deployment, error) {
	query := selectDeployment + ` WHERE d.current_state = 'RUNNING'`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list running deployments: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *deploymentRepo) CountByBuild(ctx context.Context, projectID, buildID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM deployment WHERE project_id = $1 AND image_build_id = $2`,
		projectID, buildID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count deployments by build: %w", err)
	}
	return count, nil
}

const selectDeployment = `
	SELECT
		d.id, d.created_at, d.updated_at, d.project_id, d.image_build_id,
		d.name, d.target, d.external_id, d.namespace,
		d.desired_state, d.current_state, d.health,
		d.url, d.health_url, d.last_error, d.labels,
		b.name AS build_name,
		b.image_tag AS image_tag
	FROM deployment d
	JOIN image_build b ON b.id = d.image_build_id
`

func (r *deploymentRepo) collect(rows pgx.Rows) ([]*domain.Deployment, error) {
	var deps []*domain.Deployment
	for rows.Next() {
		dep, err := r.scanDeployment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deployment: %w", err)
		}
		deps = append(deps, dep)
	}
	return deps, rows.Err()
}

func (r *deploymentRepo) scanDeployment(row pgx.Row) (*domain.Deployment, error) {
	var dep domain.Deployment
	var target, desiredState, currentState, health string
	var labelsJSON []byte

	err := row.Scan(
		&dep.ID, &dep.CreatedAt, &dep.UpdatedAt, &dep.ProjectID, &dep.ImageBuildID,
		&dep.Name, &target, &dep.ExternalID, &dep.Namespace,
		&desiredState, &currentState, &health,
		&dep.URL, &dep.HealthURL, &dep.LastError, &labelsJSON,
		&dep.BuildName, &dep.ImageTag,
	)
	if err != nil {
		return nil, err
	}

	dep.Target = domain.DeploymentTarget(target)
	dep.DesiredState = domain.DeploymentState(desiredState)
	dep.CurrentState = domain.DeploymentState(currentState)
	dep.Health = domain.HealthState(health)
	if len(labelsJSON) > 0 {
		if err := json.Unmarshal(labelsJSON, &dep.Labels); err != nil {
			return nil, fmt.Errorf("unmarshal labels: %w", err)
		}
	}
	return &dep, nil
}
