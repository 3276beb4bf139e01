package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"onedish-backend/internal/models"
)

// ErrVendorNotFound is returned when a vendor id does not exist. Callers use
// it to surface a distinct "could not find" outcome instead of a generic error.
var ErrVendorNotFound = errors.New("vendor not found")

// sortableVendorColumns is the fixed allow-list of columns a caller may sort
// or search by. Anything outside it is rejected; free-form column names are
// never forwarded to the database.
var sortableVendorColumns = map[string]string{
	"name":    "name",
	"address": "address",
	"tier":    "tier",
	"created": "created_at",
	"updated": "updated_at",
}

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (d *DatabaseClient) CreateVendor(v models.VendorWithoutID) (string, error) {
	place, vendorImage, oneDishes, err := marshalVendorFields(v)
	if err != nil {
		return "", err
	}

	var id string
	err = d.db.QueryRow(`
		INSERT INTO vendors (name, address, tier, place, vendor_image, one_dishes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, v.Name, v.Address, string(v.Tier), place, vendorImage, oneDishes).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create vendor: %w", err)
	}

	return id, nil
}

// UpdateVendor replaces every editable field of the vendor.
func (d *DatabaseClient) UpdateVendor(vendorID string, v models.VendorWithoutID) error {
	place, vendorImage, oneDishes, err := marshalVendorFields(v)
	if err != nil {
		return err
	}

	result, err := d.db.Exec(`
		UPDATE vendors
		SET name = $1, address = $2, tier = $3, place = $4, vendor_image = $5, one_dishes = $6, updated_at = NOW()
		WHERE id = $7
	`, v.Name, v.Address, string(v.Tier), place, vendorImage, oneDishes, vendorID)
	if err != nil {
		return fmt.Errorf("failed to update vendor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update vendor: %w", err)
	}
	if rows == 0 {
		return ErrVendorNotFound
	}

	return nil
}

func (d *DatabaseClient) GetVendor(vendorID string) (*models.Vendor, error) {
	row := d.db.QueryRow(`
		SELECT id, name, address, tier, place, vendor_image, one_dishes, created_at, updated_at
		FROM vendors
		WHERE id = $1
	`, vendorID)

	vendor, err := scanVendor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVendorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}

	return vendor, nil
}

func (d *DatabaseClient) DeleteVendor(vendorID string) error {
	result, err := d.db.Exec(`DELETE FROM vendors WHERE id = $1`, vendorID)
	if err != nil {
		return fmt.Errorf("failed to delete vendor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete vendor: %w", err)
	}
	if rows == 0 {
		return ErrVendorNotFound
	}

	return nil
}

// SearchVendors performs a case-insensitive substring match over name and
// address. An empty search returns every vendor.
func (d *DatabaseClient) SearchVendors(search string) ([]models.Vendor, error) {
	rows, err := d.db.Query(`
		SELECT id, name, address, tier, place, vendor_image, one_dishes, created_at, updated_at
		FROM vendors
		WHERE name ILIKE $1 OR address ILIKE $1
		ORDER BY name ASC
	`, "%"+search+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search vendors: %w", err)
	}
	defer rows.Close()

	return collectVendors(rows)
}

// PaginatedVendors returns one page of vendors plus the total count matching
// the search. The sort/search column must be in the allow-list and the
// direction must be asc or desc.
func (d *DatabaseClient) PaginatedVendors(column, direction, search string, skip, take int) (int, []models.Vendor, error) {
	col, ok := sortableVendorColumns[column]
	if !ok {
		return 0, nil, fmt.Errorf("unsupported sort column %q", column)
	}
	if direction != "asc" && direction != "desc" {
		return 0, nil, fmt.Errorf("unsupported sort direction %q", direction)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	pattern := "%" + search + "%"

	var total int
	err = tx.QueryRow(
		fmt.Sprintf(`SELECT COUNT(*) FROM vendors WHERE %s::text ILIKE $1`, col),
		pattern,
	).Scan(&total)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to count vendors: %w", err)
	}

	rows, err := tx.Query(
		fmt.Sprintf(`
			SELECT id, name, address, tier, place, vendor_image, one_dishes, created_at, updated_at
			FROM vendors
			WHERE %s::text ILIKE $1
			ORDER BY %s %s
			OFFSET $2 LIMIT $3
		`, col, col, direction),
		pattern, skip, take,
	)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to query vendors: %w", err)
	}
	defer rows.Close()

	vendors, err := collectVendors(rows)
	if err != nil {
		return 0, nil, err
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return total, vendors, nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

func marshalVendorFields(v models.VendorWithoutID) ([]byte, []byte, []byte, error) {
	var place, vendorImage []byte
	var err error

	if v.Place != nil {
		place, err = json.Marshal(v.Place)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal place: %w", err)
		}
	}
	if v.VendorImage != nil {
		vendorImage, err = json.Marshal(v.VendorImage)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal vendor image: %w", err)
		}
	}

	dishes := v.OneDishes
	if dishes == nil {
		dishes = []models.OneDish{}
	}
	oneDishes, err := json.Marshal(dishes)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal one dishes: %w", err)
	}

	return place, vendorImage, oneDishes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVendor(row rowScanner) (*models.Vendor, error) {
	var (
		vendor      models.Vendor
		tier        string
		place       []byte
		vendorImage []byte
		oneDishes   []byte
		created     time.Time
		updated     time.Time
	)

	err := row.Scan(&vendor.ID, &vendor.Name, &vendor.Address, &tier, &place, &vendorImage, &oneDishes, &created, &updated)
	if err != nil {
		return nil, err
	}

	vendor.Tier = models.Tier(tier)
	vendor.Created = created
	vendor.Updated = updated

	if len(place) > 0 {
		vendor.Place = &models.VendorPlace{}
		if err := json.Unmarshal(place, vendor.Place); err != nil {
			return nil, fmt.Errorf("failed to unmarshal place: %w", err)
		}
	}
	if len(vendorImage) > 0 {
		vendor.VendorImage = &models.VendorPhoto{}
		if err := json.Unmarshal(vendorImage, vendor.VendorImage); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vendor image: %w", err)
		}
	}

	vendor.OneDishes = []models.OneDish{}
	if len(oneDishes) > 0 {
		if err := json.Unmarshal(oneDishes, &vendor.OneDishes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal one dishes: %w", err)
		}
	}

	return &vendor, nil
}

func collectVendors(rows *sql.Rows) ([]models.Vendor, error) {
	vendors := []models.Vendor{}
	for rows.Next() {
		vendor, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, *vendor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vendors: %w", err)
	}
	return vendors, nil
}
