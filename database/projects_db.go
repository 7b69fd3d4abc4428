package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DBConfig конфигурация подключения к БД
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ProjectsDB реестр проектов сравнения: BOQ, файлы поставщиков,
// результаты прогонов. Хранит исходные байты файлов, чтобы сравнение
// можно было перезапустить без повторной загрузки.
type ProjectsDB struct {
	conn *sql.DB
}

// Project проект сравнения с загруженным BOQ
type Project struct {
	ID        string
	Name      string
	BOQName   string
	CreatedAt time.Time
}

// SupplierFile загруженный файл коммерческого предложения
type SupplierFile struct {
	ID         int64
	ProjectID  string
	Supplier   string
	FileName   string
	UploadedAt time.Time
}

// ComparisonRun сохраненный результат запуска сравнения
type ComparisonRun struct {
	ID         int64
	ProjectID  string
	ResultJSON string
	CreatedAt  time.Time
}

// NewProjectsDB открывает реестр проектов по указанному пути
func NewProjectsDB(dbPath string) (*ProjectsDB, error) {
	config := DBConfig{}

	// Для in-memory SQLite требуется ровно одно соединение, иначе
	// каждое новое соединение получает пустую БД без таблиц.
	if isInMemoryDB(dbPath) {
		config.MaxOpenConns = 1
		config.MaxIdleConns = 1
	}

	return NewProjectsDBWithConfig(dbPath, config)
}

// isInMemoryDB определяет, что путь относится к in-memory SQLite
func isInMemoryDB(dbPath string) bool {
	if dbPath == ":memory:" {
		return true
	}
	if strings.HasPrefix(dbPath, "file:") && strings.Contains(dbPath, "mode=memory") {
		return true
	}
	return false
}

// NewProjectsDBWithConfig открывает реестр проектов с конфигурацией пула
func NewProjectsDBWithConfig(dbPath string, config DBConfig) (*ProjectsDB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open projects db: %w", err)
	}

	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping projects db: %w", err)
	}

	// WAL снижает блокировки при одновременных загрузках и чтениях
	if !isInMemoryDB(dbPath) {
		if _, err := conn.Exec(`PRAGMA journal_mode=WAL`); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable WAL: %w", err)
		}
	}
	if _, err := conn.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db := &ProjectsDB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close закрывает подключение к БД
func (db *ProjectsDB) Close() error {
	return db.conn.Close()
}

// CreateProject регистрирует проект и сохраняет байты BOQ
func (db *ProjectsDB) CreateProject(id, name, boqName string, boqData []byte) error {
	_, err := db.conn.Exec(`
		INSERT INTO projects(id, name, boq_name, boq_data)
		VALUES(?, ?, ?, ?)
	`, id, name, boqName, boqData)
	if err != nil {
		return fmt.Errorf("failed to create project %s: %w", id, err)
	}
	return nil
}

// GetProject возвращает проект по идентификатору
func (db *ProjectsDB) GetProject(id string) (*Project, error) {
	var p Project
	err := db.conn.QueryRow(`
		SELECT id, name, boq_name, created_at FROM projects WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.BOQName, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project %s: %w", id, err)
	}
	return &p, nil
}

// GetBOQData возвращает сохраненные байты BOQ проекта
func (db *ProjectsDB) GetBOQData(id string) ([]byte, error) {
	var data []byte
	err := db.conn.QueryRow(`SELECT boq_data FROM projects WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get boq data for %s: %w", id, err)
	}
	return data, nil
}

// ListProjects возвращает все проекты, новые первыми
func (db *ProjectsDB) ListProjects() ([]Project, error) {
	rows, err := db.conn.Query(`
		SELECT id, name, boq_name, created_at FROM projects ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var result []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.BOQName, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// AddSupplierFile сохраняет файл предложения поставщика. Повторная
// загрузка от того же поставщика заменяет предыдущий файл.
func (db *ProjectsDB) AddSupplierFile(projectID, supplier, fileName string, data []byte) error {
	_, err := db.conn.Exec(`
		INSERT INTO supplier_files(project_id, supplier, file_name, file_data)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(project_id, supplier) DO UPDATE SET
			file_name = excluded.file_name,
			file_data = excluded.file_data,
			uploaded_at = CURRENT_TIMESTAMP
	`, projectID, supplier, fileName, data)
	if err != nil {
		return fmt.Errorf("failed to add supplier file for %s: %w", projectID, err)
	}
	return nil
}

// ListSupplierFiles возвращает метаданные файлов поставщиков проекта
func (db *ProjectsDB) ListSupplierFiles(projectID string) ([]SupplierFile, error) {
	rows, err := db.conn.Query(`
		SELECT id, project_id, supplier, file_name, uploaded_at
		FROM supplier_files WHERE project_id = ? ORDER BY supplier
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list supplier files: %w", err)
	}
	defer rows.Close()

	var result []SupplierFile
	for rows.Next() {
		var f SupplierFile
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Supplier, &f.FileName, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan supplier file row: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

// GetSupplierData возвращает байты файлов всех поставщиков проекта
func (db *ProjectsDB) GetSupplierData(projectID string) (map[string][]byte, error) {
	rows, err := db.conn.Query(`
		SELECT supplier, file_data FROM supplier_files WHERE project_id = ?
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier data: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]byte)
	for rows.Next() {
		var supplier string
		var data []byte
		if err := rows.Scan(&supplier, &data); err != nil {
			return nil, fmt.Errorf("failed to scan supplier data row: %w", err)
		}
		result[supplier] = data
	}
	return result, rows.Err()
}

// SaveRun сохраняет результат сравнения и возвращает его идентификатор
func (db *ProjectsDB) SaveRun(projectID, resultJSON string) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO comparison_runs(project_id, result_json) VALUES(?, ?)
	`, projectID, resultJSON)
	if err != nil {
		return 0, fmt.Errorf("failed to save comparison run: %w", err)
	}
	return res.LastInsertId()
}

// LatestRun возвращает последний результат сравнения проекта
func (db *ProjectsDB) LatestRun(projectID string) (*ComparisonRun, error) {
	var run ComparisonRun
	err := db.conn.QueryRow(`
		SELECT id, project_id, result_json, created_at
		FROM comparison_runs WHERE project_id = ?
		ORDER BY id DESC LIMIT 1
	`, projectID).Scan(&run.ID, &run.ProjectID, &run.ResultJSON, &run.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest run for %s: %w", projectID, err)
	}
	return &run, nil
}
