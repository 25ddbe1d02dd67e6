package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/erpsync/backend/internal/application/catalog"
)

// CatalogHandler serves the catalog endpoints: the department hierarchy,
// tax rates, tariffs and article aggregates.
type CatalogHandler struct {
	BaseHandler
	hierarchy    *catalogapp.HierarchyService
	taxes        *catalogapp.TaxService
	tariffs      *catalogapp.TariffService
	articles     *catalogapp.ArticleService
	maxBatchSize int
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(
	hierarchy *catalogapp.HierarchyService,
	taxes *catalogapp.TaxService,
	tariffs *catalogapp.TariffService,
	articles *catalogapp.ArticleService,
	maxBatchSize int,
) *CatalogHandler {
	return &CatalogHandler{
		hierarchy:    hierarchy,
		taxes:        taxes,
		tariffs:      tariffs,
		articles:     articles,
		maxBatchSize: maxBatchSize,
	}
}

// RegisterRoutes registers the catalog routes
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	syncGroup := rg.Group("/sync")
	{
		syncGroup.POST("/departments", h.SyncDepartments)
		syncGroup.POST("/sections", h.SyncSections)
		syncGroup.POST("/families", h.SyncFamilies)
		syncGroup.POST("/taxes", h.SyncTaxes)
		syncGroup.POST("/tariffs", h.SyncTariffs)
		syncGroup.POST("/articles/full", h.SyncArticle)
	}

	departments := rg.Group("/departments")
	{
		departments.GET("", h.ListDepartments)
		departments.GET("/:number", h.GetDepartment)
		departments.DELETE("/:number", h.DeleteDepartment)
	}

	sections := rg.Group("/sections")
	{
		sections.GET("", h.ListSections)
		sections.GET("/:department/:number", h.GetSection)
		sections.DELETE("/:department/:number", h.DeleteSection)
	}

	families := rg.Group("/families")
	{
		families.GET("", h.ListFamilies)
		families.GET("/:department/:section/:number", h.GetFamily)
		families.DELETE("/:department/:section/:number", h.DeleteFamily)
	}

	taxes := rg.Group("/taxes")
	{
		taxes.GET("", h.ListTaxes)
		taxes.GET("/:type", h.GetTax)
		taxes.DELETE("/:type", h.DeleteTax)
	}

	tariffs := rg.Group("/tariffs")
	{
		tariffs.GET("", h.ListTariffs)
		tariffs.POST("/check-overlap", h.CheckTariffOverlap)
		tariffs.GET("/:id", h.GetTariff)
		tariffs.DELETE("/:id", h.DeleteTariff)
	}

	articles := rg.Group("/articles")
	{
		articles.GET("", h.ListArticles)
		articles.GET("/:code", h.GetArticle)
		articles.DELETE("/:code", h.DeleteArticle)
	}
}

type departmentBatchRequest struct {
	Departments []catalogapp.DepartmentInput `json:"DEPARTAMENTOS"`
}

// SyncDepartments handles POST /sync/departments
func (h *CatalogHandler) SyncDepartments(c *gin.Context) {
	var req departmentBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !h.checkBatch(c, len(req.Departments), h.maxBatchSize) {
		return
	}

	result, err := h.hierarchy.SyncDepartments(c.Request.Context(), req.Departments)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "departments synchronized", result)
}

type sectionBatchRequest struct {
	Sections []catalogapp.SectionInput `json:"SECCIONES"`
}

// SyncSections handles POST /sync/sections
func (h *CatalogHandler) SyncSections(c *gin.Context) {
	var req sectionBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !h.checkBatch(c, len(req.Sections), h.maxBatchSize) {
		return
	}

	result, err := h.hierarchy.SyncSections(c.Request.Context(), req.Sections)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "sections synchronized", result)
}

type familyBatchRequest struct {
	Families []catalogapp.FamilyInput `json:"FAMILIAS"`
}

// SyncFamilies handles POST /sync/families
func (h *CatalogHandler) SyncFamilies(c *gin.Context) {
	var req familyBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !h.checkBatch(c, len(req.Families), h.maxBatchSize) {
		return
	}

	result, err := h.hierarchy.SyncFamilies(c.Request.Context(), req.Families)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "families synchronized", result)
}

type taxBatchRequest struct {
	Taxes []catalogapp.TaxInput `json:"IMPUESTOS"`
}

// SyncTaxes handles POST /sync/taxes
func (h *CatalogHandler) SyncTaxes(c *gin.Context) {
	var req taxBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !h.checkBatch(c, len(req.Taxes), h.maxBatchSize) {
		return
	}

	result, err := h.taxes.Sync(c.Request.Context(), req.Taxes)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "taxes synchronized", result)
}

type tariffBatchRequest struct {
	Tariffs []catalogapp.TariffInput `json:"TARIFAS"`
}

// SyncTariffs handles POST /sync/tariffs
func (h *CatalogHandler) SyncTariffs(c *gin.Context) {
	var req tariffBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !h.checkBatch(c, len(req.Tariffs), h.maxBatchSize) {
		return
	}

	result, err := h.tariffs.Sync(c.Request.Context(), req.Tariffs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "tariffs synchronized", result)
}

// SyncArticle handles POST /sync/articles/full, the full article
// aggregate: header, variants and tariff prices in one payload
func (h *CatalogHandler) SyncArticle(c *gin.Context) {
	var req catalogapp.ArticleAggregateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.articles.Sync(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "article synchronized", result)
}

// GetDepartment handles GET /departments/:number
func (h *CatalogHandler) GetDepartment(c *gin.Context) {
	number, ok := h.pathInt(c, "number")
	if !ok {
		return
	}

	view, err := h.hierarchy.GetDepartment(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "department retrieved", view)
}

// ListDepartments handles GET /departments
func (h *CatalogHandler) ListDepartments(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	page, err := h.hierarchy.ListDepartments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, "departments retrieved", page.Items, page.Total, page.Page, page.PageSize)
}

// DeleteDepartment handles DELETE /departments/:number
func (h *CatalogHandler) DeleteDepartment(c *gin.Context) {
	number, ok := h.pathInt(c, "number")
	if !ok {
		return
	}

	if err := h.hierarchy.DeleteDepartment(c.Request.Context(), number); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "department deleted", nil)
}

// GetSection handles GET /sections/:department/:number
func (h *CatalogHandler) GetSection(c *gin.Context) {
	department, ok := h.pathInt(c, "department")
	if !ok {
		return
	}
	number, ok := h.pathInt(c, "number")
	if !ok {
		return
	}

	view, err := h.hierarchy.GetSection(c.Request.Context(), department, number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "section retrieved", view)
}

// ListSections handles GET /sections
func (h *CatalogHandler) ListSections(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	page, err := h.hierarchy.ListSections(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, "sections retrieved", page.Items, page.Total, page.Page, page.PageSize)
}

// DeleteSection handles DELETE /sections/:department/:number
func (h *CatalogHandler) DeleteSection(c *gin.Context) {
	department, ok := h.pathInt(c, "department")
	if !ok {
		return
	}
	number, ok := h.pathInt(c, "number")
	if !ok {
		return
	}

	if err := h.hierarchy.DeleteSection(c.Request.Context(), department, number); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "section deleted", nil)
}

// GetFamily handles GET /families/:department/:section/:number
func (h *CatalogHandler) GetFamily(c *gin.Context) {
	department, ok := h.pathInt(c, "department")
	if !ok {
		return
	}
	section, ok := h.pathInt(c, "section")
	if !ok {
		return
	}
	number, ok := h.pathInt(c, "number")
	if !ok {
		return
	}

	view, err := h.hierarchy.GetFamily(c.Request.Context(), department, section, number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "family retrieved", view)
}

// ListFamilies handles GET /families
func (h *CatalogHandler) ListFamilies(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	page, err := h.hierarchy.ListFamilies(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, "families retrieved", page.Items, page.Total, page.Page, page.PageSize)
}

// DeleteFamily handles DELETE /families/:department/:section/:number
func (h *CatalogHandler) DeleteFamily(c *gin.Context) {
	department, ok := h.pathInt(c, "department")
	if !ok {
		return
	}
	section, ok := h.pathInt(c, "section")
	if !ok {
		return
	}
	number, ok := h.pathInt(c, "number")
	if !ok {
		return
	}

	if err := h.hierarchy.DeleteFamily(c.Request.Context(), department, section, number); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "family deleted", nil)
}

// GetTax handles GET /taxes/:type
func (h *CatalogHandler) GetTax(c *gin.Context) {
	taxType, ok := h.pathInt(c, "type")
	if !ok {
		return
	}

	view, err := h.taxes.Get(c.Request.Context(), taxType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "tax retrieved", view)
}

// ListTaxes handles GET /taxes
func (h *CatalogHandler) ListTaxes(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	page, err := h.taxes.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, "taxes retrieved", page.Items, page.Total, page.Page, page.PageSize)
}

// DeleteTax handles DELETE /taxes/:type
func (h *CatalogHandler) DeleteTax(c *gin.Context) {
	taxType, ok := h.pathInt(c, "type")
	if !ok {
		return
	}

	if err := h.taxes.Delete(c.Request.Context(), taxType); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "tax deleted", nil)
}

// GetTariff handles GET /tariffs/:id
func (h *CatalogHandler) GetTariff(c *gin.Context) {
	id, ok := h.pathInt(c, "id")
	if !ok {
		return
	}

	view, err := h.tariffs.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "tariff retrieved", view)
}

// ListTariffs handles GET /tariffs
func (h *CatalogHandler) ListTariffs(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	page, err := h.tariffs.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, "tariffs retrieved", page.Items, page.Total, page.Page, page.PageSize)
}

// DeleteTariff handles DELETE /tariffs/:id
func (h *CatalogHandler) DeleteTariff(c *gin.Context) {
	id, ok := h.pathInt(c, "id")
	if !ok {
		return
	}

	if err := h.tariffs.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "tariff deleted", nil)
}

// CheckTariffOverlap handles POST /tariffs/check-overlap. It is a
// read-only pre-flight: nothing is written no matter the outcome.
func (h *CatalogHandler) CheckTariffOverlap(c *gin.Context) {
	var req catalogapp.OverlapCheckInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.tariffs.CheckOverlap(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "overlap check completed", result)
}

// GetArticle handles GET /articles/:code
func (h *CatalogHandler) GetArticle(c *gin.Context) {
	code, ok := h.pathInt(c, "code")
	if !ok {
		return
	}

	view, err := h.articles.Get(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "article retrieved", view)
}

// ListArticles handles GET /articles
func (h *CatalogHandler) ListArticles(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	page, err := h.articles.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, "articles retrieved", page.Items, page.Total, page.Page, page.PageSize)
}

// DeleteArticle handles DELETE /articles/:code
func (h *CatalogHandler) DeleteArticle(c *gin.Context) {
	code, ok := h.pathInt(c, "code")
	if !ok {
		return
	}

	if err := h.articles.Delete(c.Request.Context(), code); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "article deleted", nil)
}
