package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/emrelibot-hash/supplypilot-bot/alignment"
	"github.com/emrelibot-hash/supplypilot-bot/export"
	"github.com/emrelibot-hash/supplypilot-bot/importer"
	apperrors "github.com/emrelibot-hash/supplypilot-bot/server/errors"
)

// respondError отдает AppError клиенту и пишет детали в лог
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.NewInternalError("unexpected error", err)
	}
	LogError(c.Request.Context(), err, "request failed",
		"method", c.Request.Method, "path", c.Request.URL.Path)
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}

// readUpload читает файл из multipart-формы с ограничением размера
func (s *Server) readUpload(file *multipart.FileHeader) ([]byte, error) {
	if file.Size > s.config.MaxUploadSize {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("файл больше допустимых %d байт", s.config.MaxUploadSize), nil)
	}
	f, err := file.Open()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to open upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.config.MaxUploadSize+1))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read upload", err)
	}
	if int64(len(data)) > s.config.MaxUploadSize {
		return nil, apperrors.NewValidationError("файл больше допустимого размера", nil)
	}
	return data, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleCreateProject создает проект из загруженного BOQ. Файл
// разбирается сразу: проект без распознаваемого BOQ бесполезен.
func (s *Server) handleCreateProject(c *gin.Context) {
	file, err := c.FormFile("boq")
	if err != nil {
		respondError(c, apperrors.NewValidationError("нужен файл в поле boq", err))
		return
	}

	data, err := s.readUpload(file)
	if err != nil {
		respondError(c, err)
		return
	}

	if importer.DetectKind(data) != importer.KindSpreadsheet {
		respondError(c, apperrors.NewValidationError("BOQ должен быть файлом Excel", nil))
		return
	}

	sheets, err := importer.ReadWorkbook(data)
	if err != nil {
		respondError(c, apperrors.NewUnprocessableError("не удалось прочитать книгу Excel", err))
		return
	}

	items, err := importer.BuildBOQ(c.Request.Context(), sheets, importer.BuildOptions{Translator: s.translator})
	if err != nil {
		if errors.Is(err, importer.ErrNoUsableSheet) {
			respondError(c, apperrors.NewUnprocessableError("в файле не найдено листов с ведомостью", err))
			return
		}
		respondError(c, apperrors.NewInternalError("failed to build boq", err))
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		name = file.Filename
	}

	id := uuid.New().String()
	if err := s.db.CreateProject(id, name, file.Filename, data); err != nil {
		respondError(c, apperrors.NewInternalError("failed to create project", err))
		return
	}

	LogInfo(c.Request.Context(), "project created",
		"project_id", id, "name", name, "boq_items", len(items))

	c.JSON(http.StatusCreated, gin.H{
		"id":        id,
		"name":      name,
		"boq_name":  file.Filename,
		"boq_items": len(items),
	})
}

func (s *Server) handleListProjects(c *gin.Context) {
	projects, err := s.db.ListProjects()
	if err != nil {
		respondError(c, apperrors.NewInternalError("failed to list projects", err))
		return
	}

	type projectJSON struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		BOQName   string `json:"boq_name"`
		CreatedAt string `json:"created_at"`
	}
	out := make([]projectJSON, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectJSON{
			ID:        p.ID,
			Name:      p.Name,
			BOQName:   p.BOQName,
			CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"projects": out})
}

// getProject достает проект или отвечает 404
func (s *Server) getProject(c *gin.Context) (string, bool) {
	id := c.Param("id")
	p, err := s.db.GetProject(id)
	if err != nil {
		respondError(c, apperrors.NewInternalError("failed to get project", err))
		return "", false
	}
	if p == nil {
		respondError(c, apperrors.NewNotFoundError("проект не найден", nil))
		return "", false
	}
	return id, true
}

func (s *Server) handleGetProject(c *gin.Context) {
	id := c.Param("id")
	p, err := s.db.GetProject(id)
	if err != nil {
		respondError(c, apperrors.NewInternalError("failed to get project", err))
		return
	}
	if p == nil {
		respondError(c, apperrors.NewNotFoundError("проект не найден", nil))
		return
	}

	files, err := s.db.ListSupplierFiles(id)
	if err != nil {
		respondError(c, apperrors.NewInternalError("failed to list supplier files", err))
		return
	}

	suppliers := make([]string, 0, len(files))
	for _, f := range files {
		suppliers = append(suppliers, f.Supplier)
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        p.ID,
		"name":      p.Name,
		"boq_name":  p.BOQName,
		"suppliers": suppliers,
	})
}

// handleUploadRFQ принимает файл предложения поставщика. Файл здесь
// только сохраняется: разбирается он при сравнении, чтобы один плохой
// файл не мешал загрузить остальные.
func (s *Server) handleUploadRFQ(c *gin.Context) {
	id, ok := s.getProject(c)
	if !ok {
		return
	}

	supplier := strings.TrimSpace(c.PostForm("supplier"))
	if supplier == "" {
		respondError(c, apperrors.NewValidationError("нужно имя поставщика в поле supplier", nil))
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperrors.NewValidationError("нужен файл в поле file", err))
		return
	}

	data, err := s.readUpload(file)
	if err != nil {
		respondError(c, err)
		return
	}

	if importer.DetectKind(data) == importer.KindUnknown {
		respondError(c, apperrors.NewValidationError("формат файла не распознан: нужен Excel или PDF", nil))
		return
	}

	if err := s.db.AddSupplierFile(id, supplier, file.Filename, data); err != nil {
		respondError(c, apperrors.NewInternalError("failed to store supplier file", err))
		return
	}

	LogInfo(c.Request.Context(), "rfq uploaded",
		"project_id", id, "supplier", supplier, "file", file.Filename)

	c.JSON(http.StatusCreated, gin.H{"project_id": id, "supplier": supplier})
}

func (s *Server) handleListFiles(c *gin.Context) {
	id, ok := s.getProject(c)
	if !ok {
		return
	}

	files, err := s.db.ListSupplierFiles(id)
	if err != nil {
		respondError(c, apperrors.NewInternalError("failed to list supplier files", err))
		return
	}

	type fileJSON struct {
		Supplier   string `json:"supplier"`
		FileName   string `json:"file_name"`
		UploadedAt string `json:"uploaded_at"`
	}
	out := make([]fileJSON, 0, len(files))
	for _, f := range files {
		out = append(out, fileJSON{
			Supplier:   f.Supplier,
			FileName:   f.FileName,
			UploadedAt: f.UploadedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"files": out})
}

// handleCompare запускает сравнение и сохраняет результат
func (s *Server) handleCompare(c *gin.Context) {
	id, ok := s.getProject(c)
	if !ok {
		return
	}

	currency := strings.ToUpper(strings.TrimSpace(c.Query("currency")))

	table, warnings, err := s.runComparison(c.Request.Context(), id, currency)
	if err != nil {
		respondError(c, err)
		return
	}

	payload, err := json.Marshal(table)
	if err != nil {
		respondError(c, apperrors.NewInternalError("failed to marshal result", err))
		return
	}
	runID, err := s.db.SaveRun(id, string(payload))
	if err != nil {
		respondError(c, apperrors.NewInternalError("failed to save run", err))
		return
	}

	LogInfo(c.Request.Context(), "comparison finished",
		"project_id", id, "run_id", runID,
		"rows", len(table.Rows), "suppliers", len(table.Suppliers))

	c.JSON(http.StatusOK, gin.H{
		"run_id":   runID,
		"result":   table,
		"warnings": warnings,
	})
}

// latestTable достает последний результат сравнения проекта
func (s *Server) latestTable(c *gin.Context, id string) (*alignment.ComparisonTable, bool) {
	run, err := s.db.LatestRun(id)
	if err != nil {
		respondError(c, apperrors.NewInternalError("failed to get latest run", err))
		return nil, false
	}
	if run == nil {
		respondError(c, apperrors.NewNotFoundError("сравнение еще не запускалось", nil))
		return nil, false
	}

	var table alignment.ComparisonTable
	if err := json.Unmarshal([]byte(run.ResultJSON), &table); err != nil {
		respondError(c, apperrors.NewInternalError("failed to decode stored run", err))
		return nil, false
	}
	return &table, true
}

func (s *Server) handleGetResult(c *gin.Context) {
	id, ok := s.getProject(c)
	if !ok {
		return
	}
	table, ok := s.latestTable(c, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, table)
}

// handleGetRate отдает курс валюты к лари. Котировки поставщиков
// приходят в разных валютах, фронту нужен курс для пересчета итогов.
func (s *Server) handleGetRate(c *gin.Context) {
	code := strings.ToUpper(c.Param("code"))
	rate, err := s.rates.Get(c.Request.Context(), code)
	if err != nil {
		respondError(c, apperrors.NewNotFoundError(
			fmt.Sprintf("курс для %s недоступен", code), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":     rate.Code,
		"rate":     rate.Rate,
		"quantity": rate.Qty,
		"per_unit": rate.PerUnit(),
	})
}

func (s *Server) handleExportXLSX(c *gin.Context) {
	id, ok := s.getProject(c)
	if !ok {
		return
	}
	table, ok := s.latestTable(c, id)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, table); err != nil {
		respondError(c, apperrors.NewInternalError("failed to render xlsx", err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="comparison.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
