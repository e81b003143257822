package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrBadTemplate is returned when a template does not carry a full hand.
var ErrBadTemplate = errors.New("template must have 21 landmarks")

// Template is a labelled hand pose stored in the database.
type Template struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Label     gesture.Label      `json:"label"`
	Builtin   bool               `json:"builtin"`
	Landmarks []detector.Point3D `json:"landmarks,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// TemplateRepository provides CRUD operations for templates.
type TemplateRepository struct {
	db *sql.DB
}

// Templates returns the template repository for this store.
func (s *Store) Templates() *TemplateRepository {
	return &TemplateRepository{db: s.db}
}

// Create inserts a template and its landmarks in a single transaction.
// An empty ID is filled with a new UUID.
func (r *TemplateRepository) Create(t *Template) error {
	if len(t.Landmarks) != detector.NumLandmarks {
		return ErrBadTemplate
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO templates (id, name, label, builtin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, int(t.Label), t.Builtin, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert template %q: %w", t.Name, err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO template_landmarks (template_id, landmark_index, x, y, z) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range t.Landmarks {
		if _, err := stmt.Exec(t.ID, i, p.X, p.Y, p.Z); err != nil {
			return fmt.Errorf("insert landmark %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves a template with its landmarks.
func (r *TemplateRepository) GetByID(id string) (*Template, error) {
	t, err := r.scanOne(
		`SELECT id, name, label, builtin, created_at, updated_at FROM templates WHERE id = ?`, id,
	)
	if err != nil {
		return nil, err
	}
	if t.Landmarks, err = r.landmarks(t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

// GetByName retrieves a template with its landmarks by name.
func (r *TemplateRepository) GetByName(name string) (*Template, error) {
	t, err := r.scanOne(
		`SELECT id, name, label, builtin, created_at, updated_at FROM templates WHERE name = ?`, name,
	)
	if err != nil {
		return nil, err
	}
	if t.Landmarks, err = r.landmarks(t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

// List retrieves all templates. Landmarks are loaded only when
// withLandmarks is set.
func (r *TemplateRepository) List(withLandmarks bool) ([]*Template, error) {
	rows, err := r.db.Query(
		`SELECT id, name, label, builtin, created_at, updated_at
		 FROM templates ORDER BY created_at, name`,
	)
	if err != nil {
		return nil, err
	}

	var templates []*Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if withLandmarks {
		for _, t := range templates {
			if t.Landmarks, err = r.landmarks(t.ID); err != nil {
				return nil, err
			}
		}
	}

	return templates, nil
}

// Count returns the number of stored templates.
func (r *TemplateRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM templates`).Scan(&n)
	return n, err
}

// Delete removes a template and its landmarks by ID.
func (r *TemplateRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Seed inserts the given templates when the table is empty and reports how
// many were added.
func (r *TemplateRepository) Seed(templates []*Template) (int, error) {
	n, err := r.Count()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	for i, t := range templates {
		if err := r.Create(t); err != nil {
			return i, err
		}
	}
	return len(templates), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*Template, error) {
	t := &Template{}
	var label int
	if err := row.Scan(&t.ID, &t.Name, &label, &t.Builtin, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Label = gesture.Label(label)
	return t, nil
}

func (r *TemplateRepository) scanOne(query string, arg any) (*Template, error) {
	t, err := scanTemplate(r.db.QueryRow(query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TemplateRepository) landmarks(templateID string) ([]detector.Point3D, error) {
	rows, err := r.db.Query(
		`SELECT landmark_index, x, y, z FROM template_landmarks
		 WHERE template_id = ? ORDER BY landmark_index`,
		templateID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]detector.Point3D, 0, detector.NumLandmarks)
	for rows.Next() {
		var idx int
		var p detector.Point3D
		if err := rows.Scan(&idx, &p.X, &p.Y, &p.Z); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(points) != detector.NumLandmarks {
		return nil, fmt.Errorf("template %s: %w (got %d)", templateID, ErrBadTemplate, len(points))
	}
	return points, nil
}
