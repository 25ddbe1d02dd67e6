// Package catalog implements the application services of the catalog
// side of the synchronization engine: merchandise hierarchy, tax rates,
// tariffs and the article aggregate.
package catalog

import (
	"context"

	"github.com/erpsync/backend/internal/application/sync"
	"github.com/erpsync/backend/internal/domain/catalog"
	"github.com/erpsync/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// HierarchyService synchronizes the three-level merchandise hierarchy.
// Sections must land after their department and families after their
// section; each level checks its parent against current storage.
type HierarchyService struct {
	departments shared.EntityStore[catalog.Department]
	sections    shared.EntityStore[catalog.Section]
	families    shared.EntityStore[catalog.Family]
	articles    shared.EntityStore[catalog.Article]

	deptCoord    *sync.Coordinator[catalog.Department, *catalog.Department]
	sectionCoord *sync.Coordinator[catalog.Section, *catalog.Section]
	familyCoord  *sync.Coordinator[catalog.Family, *catalog.Family]
}

// NewHierarchyService creates a new HierarchyService
func NewHierarchyService(
	departments shared.EntityStore[catalog.Department],
	sections shared.EntityStore[catalog.Section],
	families shared.EntityStore[catalog.Family],
	articles shared.EntityStore[catalog.Article],
	tx shared.TxManager,
	clock shared.Clock,
	logger *zap.Logger,
) *HierarchyService {
	return &HierarchyService{
		departments: departments,
		sections:    sections,
		families:    families,
		articles:    articles,
		deptCoord: sync.NewCoordinator[catalog.Department](
			departments, tx, clock, logger),
		sectionCoord: sync.NewCoordinator[catalog.Section](
			sections, tx, clock, logger,
			sync.RequiredRef("Department",
				func(s *catalog.Section) shared.Key { return s.DepartmentKey() },
				sync.StoreExists(departments))),
		familyCoord: sync.NewCoordinator[catalog.Family](
			families, tx, clock, logger,
			sync.RequiredRef("Section",
				func(f *catalog.Family) shared.Key { return f.SectionKey() },
				sync.StoreExists(sections))),
	}
}

// SyncDepartments applies one department batch
func (s *HierarchyService) SyncDepartments(ctx context.Context, inputs []DepartmentInput) (*sync.BatchResult, error) {
	items := make([]*catalog.Department, len(inputs))
	for i, in := range inputs {
		items[i] = in.ToEntity()
	}
	return s.deptCoord.Upsert(ctx, items)
}

// SyncSections applies one section batch
func (s *HierarchyService) SyncSections(ctx context.Context, inputs []SectionInput) (*sync.BatchResult, error) {
	items := make([]*catalog.Section, len(inputs))
	for i, in := range inputs {
		items[i] = in.ToEntity()
	}
	return s.sectionCoord.Upsert(ctx, items)
}

// SyncFamilies applies one family batch
func (s *HierarchyService) SyncFamilies(ctx context.Context, inputs []FamilyInput) (*sync.BatchResult, error) {
	items := make([]*catalog.Family, len(inputs))
	for i, in := range inputs {
		items[i] = in.ToEntity()
	}
	return s.familyCoord.Upsert(ctx, items)
}

// GetDepartment returns one department by number
func (s *HierarchyService) GetDepartment(ctx context.Context, number int) (*DepartmentView, error) {
	dept, err := s.departments.Find(ctx, shared.Key{"numdpto": number})
	if err != nil {
		return nil, err
	}
	return newDepartmentView(dept), nil
}

// ListDepartments returns a page of departments
func (s *HierarchyService) ListDepartments(ctx context.Context, filter shared.Filter) (*shared.Paginated[DepartmentView], error) {
	filter.Normalize()
	rows, total, err := s.departments.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]DepartmentView, len(rows))
	for i := range rows {
		views[i] = *newDepartmentView(&rows[i])
	}
	page := shared.NewPaginated(views, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetSection returns one section by its composite key
func (s *HierarchyService) GetSection(ctx context.Context, department, number int) (*SectionView, error) {
	section, err := s.sections.Find(ctx, shared.Key{"numdpto": department, "numseccion": number})
	if err != nil {
		return nil, err
	}
	return newSectionView(section), nil
}

// ListSections returns a page of sections, optionally scoped to one
// department through filter.Filters
func (s *HierarchyService) ListSections(ctx context.Context, filter shared.Filter) (*shared.Paginated[SectionView], error) {
	filter.Normalize()
	rows, total, err := s.sections.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]SectionView, len(rows))
	for i := range rows {
		views[i] = *newSectionView(&rows[i])
	}
	page := shared.NewPaginated(views, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetFamily returns one family by its composite key
func (s *HierarchyService) GetFamily(ctx context.Context, department, section, number int) (*FamilyView, error) {
	family, err := s.families.Find(ctx, shared.Key{
		"numdpto":    department,
		"numseccion": section,
		"numfamilia": number,
	})
	if err != nil {
		return nil, err
	}
	return newFamilyView(family), nil
}

// ListFamilies returns a page of families
func (s *HierarchyService) ListFamilies(ctx context.Context, filter shared.Filter) (*shared.Paginated[FamilyView], error) {
	filter.Normalize()
	rows, total, err := s.families.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]FamilyView, len(rows))
	for i := range rows {
		views[i] = *newFamilyView(&rows[i])
	}
	page := shared.NewPaginated(views, total, filter.Page, filter.PageSize)
	return &page, nil
}

// DeleteDepartment removes a department with no dependent sections or
// articles
func (s *HierarchyService) DeleteDepartment(ctx context.Context, number int) error {
	key := shared.Key{"numdpto": number}
	if _, err := s.departments.Find(ctx, key); err != nil {
		return err
	}
	dependents, err := s.sections.Count(ctx, key)
	if err != nil {
		return err
	}
	if dependents > 0 {
		return shared.NewConsistencyError("department %d still has %d sections", number, dependents)
	}
	linked, err := s.articles.Count(ctx, shared.Key{"dpto": number})
	if err != nil {
		return err
	}
	if linked > 0 {
		return shared.NewConsistencyError("department %d is still referenced by %d articles", number, linked)
	}
	return s.departments.Delete(ctx, key)
}

// DeleteSection removes a section with no dependent families
func (s *HierarchyService) DeleteSection(ctx context.Context, department, number int) error {
	key := shared.Key{"numdpto": department, "numseccion": number}
	if _, err := s.sections.Find(ctx, key); err != nil {
		return err
	}
	dependents, err := s.families.Count(ctx, key)
	if err != nil {
		return err
	}
	if dependents > 0 {
		return shared.NewConsistencyError("section %d.%d still has %d families", department, number, dependents)
	}
	return s.sections.Delete(ctx, key)
}

// DeleteFamily removes a family not referenced by any article
func (s *HierarchyService) DeleteFamily(ctx context.Context, department, section, number int) error {
	key := shared.Key{"numdpto": department, "numseccion": section, "numfamilia": number}
	if _, err := s.families.Find(ctx, key); err != nil {
		return err
	}
	linked, err := s.articles.Count(ctx, shared.Key{
		"dpto":    department,
		"seccion": section,
		"familia": number,
	})
	if err != nil {
		return err
	}
	if linked > 0 {
		return shared.NewConsistencyError("family %d.%d.%d is still referenced by %d articles",
			department, section, number, linked)
	}
	return s.families.Delete(ctx, key)
}
