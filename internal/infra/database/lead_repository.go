package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"

	"github.com/heatpumphub/backoffice/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, nom, prenom, email, telephone, adresse, ville, code_postal,
	status, type_logement, surface, type_chauffage_actuel, puissance_estimee,
	qhare_id, notes, technical_data, appointments, source, created_at, updated_at`

func (r *LeadRepository) Create(ctx context.Context, l *entity.Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	technicalData, appointments, err := marshalJSONB(l)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, query,
		l.ID, l.Nom, l.Prenom, l.Email, l.Telephone, l.Adresse, l.Ville, l.CodePostal,
		string(l.Status), l.TypeLogement, l.Surface, l.TypeChauffageActuel, l.PuissanceEstimee,
		nullString(l.QhareID), l.Notes, technicalData, appointments, l.Source,
		l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return entity.ErrDuplicateLead
		}
		log.Printf("Erreur critique en base: %v", err)
		return err
	}

	return nil
}

func (r *LeadRepository) Update(ctx context.Context, l *entity.Lead) error {
	query := `
		UPDATE leads SET
			nom = $2, prenom = $3, email = $4, telephone = $5,
			adresse = $6, ville = $7, code_postal = $8,
			status = $9, type_logement = $10, surface = $11,
			type_chauffage_actuel = $12, puissance_estimee = $13,
			qhare_id = $14, notes = $15, technical_data = $16,
			appointments = $17, updated_at = $18
		WHERE id = $1
	`

	technicalData, appointments, err := marshalJSONB(l)
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(ctx, query,
		l.ID, l.Nom, l.Prenom, l.Email, l.Telephone,
		l.Adresse, l.Ville, l.CodePostal,
		string(l.Status), l.TypeLogement, l.Surface,
		l.TypeChauffageActuel, l.PuissanceEstimee,
		nullString(l.QhareID), l.Notes, technicalData,
		appointments, l.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return entity.ErrDuplicateLead
		}
		return err
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	return r.findOne(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
}

func (r *LeadRepository) FindByQhareID(ctx context.Context, qhareID string) (*entity.Lead, error) {
	return r.findOne(ctx, `SELECT `+leadColumns+` FROM leads WHERE qhare_id = $1 ORDER BY created_at LIMIT 1`, qhareID)
}

func (r *LeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	return r.findOne(ctx, `SELECT `+leadColumns+` FROM leads WHERE LOWER(email) = LOWER($1) ORDER BY created_at LIMIT 1`, email)
}

func (r *LeadRepository) findOne(ctx context.Context, query string, arg interface{}) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, query, arg)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

func (r *LeadRepository) List(ctx context.Context) ([]entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

// HasAppointmentOn : un lead autre que excludeID occupe-t-il déjà cette date ?
// Comparaison exacte sur la forme canonique YYYY-MM-DD ; la reprise au
// démarrage (NormalizeAppointmentDates) garantit que les anciennes lignes la
// respectent. Lecture sans verrou ni transaction : deux réservations quasi
// simultanées peuvent passer toutes les deux, c'est assumé.
func (r *LeadRepository) HasAppointmentOn(ctx context.Context, date, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM leads l,
			     jsonb_array_elements(COALESCE(l.appointments, '[]'::jsonb)) a
			WHERE l.id <> $2
			  AND a->>'date' = $1
		)
	`
	var exists bool
	err := r.DB.QueryRowContext(ctx, query, date, excludeID).Scan(&exists)
	return exists, err
}

// BackfillQhareIDs reprend une fois, au démarrage, les identifiants encore
// enfouis dans les notes ("ID Qhare: <chiffres>") vers la colonne dédiée.
func (r *LeadRepository) BackfillQhareIDs(ctx context.Context) (int64, error) {
	query := `
		UPDATE leads
		SET qhare_id = substring(notes FROM 'ID Qhare:\s*(\d+)')
		WHERE (qhare_id IS NULL OR qhare_id = '')
		  AND notes ~ 'ID Qhare:\s*\d'
	`
	res, err := r.DB.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("backfill des ID Qhare échoué: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var l entity.Lead
	var status string
	var qhareID, notes, source, puissance sql.NullString
	var technicalData, appointments []byte

	err := row.Scan(
		&l.ID, &l.Nom, &l.Prenom, &l.Email, &l.Telephone, &l.Adresse, &l.Ville, &l.CodePostal,
		&status, &l.TypeLogement, &l.Surface, &l.TypeChauffageActuel, &puissance,
		&qhareID, &notes, &technicalData, &appointments, &source,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Status = entity.Status(status)
	l.QhareID = qhareID.String
	l.Notes = notes.String
	l.Source = source.String
	l.PuissanceEstimee = puissance.String

	if len(technicalData) > 0 {
		if err := json.Unmarshal(technicalData, &l.TechnicalData); err != nil {
			return nil, fmt.Errorf("technical_data illisible pour le lead %s: %w", l.ID, err)
		}
	}
	if l.TechnicalData == nil {
		l.TechnicalData = map[string]interface{}{}
	}

	if len(appointments) > 0 {
		if err := json.Unmarshal(appointments, &l.Appointments); err != nil {
			return nil, fmt.Errorf("appointments illisible pour le lead %s: %w", l.ID, err)
		}
	}
	if l.Appointments == nil {
		l.Appointments = []entity.Appointment{}
	}

	return &l, nil
}

func marshalJSONB(l *entity.Lead) ([]byte, []byte, error) {
	technicalData, err := json.Marshal(l.TechnicalData)
	if err != nil {
		return nil, nil, fmt.Errorf("sérialisation technical_data: %w", err)
	}
	appointments, err := json.Marshal(l.Appointments)
	if err != nil {
		return nil, nil, fmt.Errorf("sérialisation appointments: %w", err)
	}
	return technicalData, appointments, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
