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

type imageBuildRepo struct {
	pool *pgxpool.Pool
}

// NewImageBuildRepository creates a new ImageBuildRepository
func NewImageBuildRepository(pool *pgxpool.Pool) ports.ImageBuildRepository {
	return &imageBuildRepo{pool: pool}
}

func (r *imageBuildRepo) Create(ctx context.Context, build *domain.ImageBuild) error {
	recipeJSON, err := json.Marshal(build.Recipe)
	if err != nil {
		return fmt.Errorf("marshal recipe: %w", err)
	}
	labelsJSON, err := json.Marshal(build.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}

	query := `
		INSERT INTO image_build
			(id, created_at, updated_at, project_id, name, slug, context_dir,
			 recipe, status, image_tag, image_id, last_error, labels)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.pool.Exec(ctx, query,
		build.ID, build.CreatedAt, build.UpdatedAt,
		build.ProjectID, build.Name, build.Slug, build.ContextDir,
		recipeJSON, string(build.Status),
		build.ImageTag, build.ImageID, build.LastError, labelsJSON,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrBuildNameConflict
		}
		return fmt.Errorf("create image build: %w", err)
	}
	return nil
}

func (r *imageBuildRepo) GetByID(ctx context.Context, projectID, id uuid.UUID) (*domain.ImageBuild, error) {
	query := selectBuild + ` WHERE b.id = $1 AND b.project_id = $2`

	build, err := r.scanBuild(r.pool.QueryRow(ctx, query, id, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBuildNotFound
		}
		return nil, fmt.Errorf("get image build by id: %w", err)
	}
	return build, nil
}

func (r *imageBuildRepo) GetByName(ctx context.Context, projectID uuid.UUID, name string) (*domain.ImageBuild, error) {
	query := selectBuild + ` WHERE b.name = $1 AND b.project_id = $2`

	build, err := r.scanBuild(r.pool.QueryRow(ctx, query, name, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBuildNotFound
		}
		return nil, fmt.Errorf("get image build by name: %w", err)
	}
	return build, nil
}

func (r *imageBuildRepo) Update(ctx context.Context, projectID uuid.UUID, build *domain.ImageBuild) error {
	labelsJSON, err := json.Marshal(build.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}

	query := `
		UPDATE image_build
		SET status = $1, image_tag = $2, image_id = $3,
			last_error = $4, labels = $5, updated_at = NOW()
		WHERE id = $6 AND project_id = $7
	`

	result, err := r.pool.Exec(ctx, query,
		string(build.Status), build.ImageTag, build.ImageID,
		build.LastError, labelsJSON,
		build.ID, projectID,
	)
	if err != nil {
		return fmt.Errorf("update image build: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrBuildNotFound
	}
	return nil
}

func (r *imageBuildRepo) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM image_build WHERE id = $1 AND project_id = $2`, id, projectID)
	if err != nil {
		return fmt.Errorf("delete image build: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrBuildNotFound
	}
	return nil
}

func (r *imageBuildRepo) List(ctx context.Context, filter ports.ImageBuildFilter) ([]*domain.ImageBuild, int, error) {
	where := []string{"b.project_id = $1"}
	args := []interface{}{filter.ProjectID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("b.status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("b.name ILIKE $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM image_build b WHERE ` + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count image builds: %w", err)
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
	query := fmt.Sprintf("%s WHERE %s ORDER BY b.%s %s LIMIT $%d OFFSET $%d",
		selectBuild, whereClause, sortBy, order, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list image builds: %w", err)
	}
	defer rows.Close()

	var builds []*domain.ImageBuild
	for rows.Next() {
		build, err := r.scanBuild(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan image build: %w", err)
		}
		builds = append(builds, build)
	}
	return builds, total, rows.Err()
}

const selectBuild = `
	SELECT
		b.id, b.created_at, b.updated_at, b.project_id, b.name, b.slug,
		b.context_dir, b.recipe, b.status, b.image_tag, b.image_id,
		b.last_error, b.labels
	FROM image_build b
`

func (r *imageBuildRepo) scanBuild(row pgx.Row) (*domain.ImageBuild, error) {
	var build domain.ImageBuild
	var status string
	var recipeJSON, labelsJSON []byte

	err := row.Scan(
		&build.ID, &build.CreatedAt, &build.UpdatedAt, &build.ProjectID,
		&build.Name, &build.Slug, &build.ContextDir,
		&recipeJSON, &status, &build.ImageTag, &build.ImageID,
		&build.LastError, &labelsJSON,
	)
	if err != nil {
		return nil, err
	}

	build.Status = domain.BuildStatus(status)
	if err := json.Unmarshal(recipeJSON, &build.Recipe); err != nil {
		return nil, fmt.Errorf("unmarshal recipe: %w", err)
	}
	if len(labelsJSON) > 0 {
		if err := json.Unmarshal(labelsJSON, &build.Labels); err != nil {
			return nil, fmt.Errorf("unmarshal labels: %w", err)
		}
	}
	return &build, nil
}
