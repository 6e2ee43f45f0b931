package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/dto"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/model"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/repository"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/filestore"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu     sync.Mutex
	byID   map[string]*model.User
	byName map[string]*model.User
	getErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byID: make(map[string]*model.User), byName: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[user.Username]; ok {
		return gorm.ErrDuplicatedKey
	}
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	m.byID[user.UserID] = user
	m.byName[user.Username] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byName[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[user.UserID] = user
	m.byName[user.Username] = user
	return nil
}

func (m *mockUserRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.byID)), nil
}

// ── Mock LabInfoRepository ──

type mockLabInfoRepo struct {
	info *model.LabInfo
}

func newMockLabInfoRepo() *mockLabInfoRepo {
	return &mockLabInfoRepo{}
}

func (m *mockLabInfoRepo) Get(_ context.Context) (*model.LabInfo, error) {
	if m.info == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m.info
	return &cp, nil
}

func (m *mockLabInfoRepo) Create(_ context.Context, info *model.LabInfo) error {
	if m.info != nil {
		return gorm.ErrDuplicatedKey
	}
	cp := *info
	m.info = &cp
	return nil
}

func (m *mockLabInfoRepo) Update(_ context.Context, info *model.LabInfo) error {
	cp := *info
	m.info = &cp
	return nil
}

func (m *mockLabInfoRepo) Count(_ context.Context) (int64, error) {
	if m.info == nil {
		return 0, nil
	}
	return 1, nil
}

// ── Mock EquipmentRepository ──

type mockEquipmentRepo struct {
	items     []*model.Equipment
	createErr error
}

func newMockEquipmentRepo() *mockEquipmentRepo {
	return &mockEquipmentRepo{}
}

func (m *mockEquipmentRepo) Create(_ context.Context, e *model.Equipment) error {
	if m.createErr != nil {
		return m.createErr
	}
	if e.EquipmentID == "" {
		e.EquipmentID = "eq-" + e.Name
	}
	m.items = append(m.items, e)
	return nil
}

func (m *mockEquipmentRepo) GetByID(_ context.Context, id string) (*model.Equipment, error) {
	for _, e := range m.items {
		if e.EquipmentID == id {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEquipmentRepo) List(_ context.Context, offset, limit int) ([]model.Equipment, int64, error) {
	all, _ := m.ListAll(context.Background())
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Equipment{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockEquipmentRepo) ListAll(_ context.Context) ([]model.Equipment, error) {
	result := make([]model.Equipment, 0, len(m.items))
	for _, e := range m.items {
		result = append(result, *e)
	}
	return result, nil
}

func (m *mockEquipmentRepo) ListFileRefs(_ context.Context) ([]repository.FileRef, error) {
	var refs []repository.FileRef
	for _, e := range m.items {
		if e.ImagemFilename != nil && *e.ImagemFilename != "" {
			refs = append(refs, repository.FileRef{Kind: repository.KindEquipment, RecordID: e.EquipmentID, Ref: *e.ImagemFilename})
		}
	}
	return refs, nil
}

// ── Mock MachineRepository ──

type mockMachineRepo struct {
	items     []*model.Machine
	createErr error
}

func newMockMachineRepo() *mockMachineRepo {
	return &mockMachineRepo{}
}

func (m *mockMachineRepo) Create(_ context.Context, machine *model.Machine) error {
	if m.createErr != nil {
		return m.createErr
	}
	if machine.SerialNumber != nil {
		for _, existing := range m.items {
			if existing.SerialNumber != nil && *existing.SerialNumber == *machine.SerialNumber {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	if machine.MachineID == "" {
		machine.MachineID = "mc-" + machine.Name
	}
	m.items = append(m.items, machine)
	return nil
}

func (m *mockMachineRepo) GetByID(_ context.Context, id string) (*model.Machine, error) {
	for _, machine := range m.items {
		if machine.MachineID == id {
			return machine, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMachineRepo) GetBySerialNumber(_ context.Context, serial string) (*model.Machine, error) {
	for _, machine := range m.items {
		if machine.SerialNumber != nil && *machine.SerialNumber == serial {
			return machine, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMachineRepo) List(_ context.Context, offset, limit int) ([]model.Machine, int64, error) {
	all, _ := m.ListAll(context.Background())
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Machine{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockMachineRepo) ListAll(_ context.Context) ([]model.Machine, error) {
	result := make([]model.Machine, 0, len(m.items))
	for _, machine := range m.items {
		result = append(result, *machine)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockMachineRepo) ListFileRefs(_ context.Context) ([]repository.FileRef, error) {
	var refs []repository.FileRef
	for _, machine := range m.items {
		if machine.ImagemFilename != nil && *machine.ImagemFilename != "" {
			refs = append(refs, repository.FileRef{Kind: repository.KindMachine, RecordID: machine.MachineID, Ref: *machine.ImagemFilename})
		}
	}
	return refs, nil
}

// ── Mock ReportRepository ──

type mockReportRepo struct {
	items     []*model.Report
	createErr error
}

func newMockReportRepo() *mockReportRepo {
	return &mockReportRepo{}
}

func (m *mockReportRepo) Create(_ context.Context, r *model.Report) error {
	if m.createErr != nil {
		return m.createErr
	}
	if r.ReportID == "" {
		r.ReportID = "rp-" + r.Title
	}
	m.items = append(m.items, r)
	return nil
}

func (m *mockReportRepo) GetByID(_ context.Context, id string) (*model.Report, error) {
	for _, r := range m.items {
		if r.ReportID == id {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReportRepo) List(_ context.Context, offset, limit int) ([]model.Report, int64, error) {
	total := int64(len(m.items))
	result := make([]model.Report, 0, len(m.items))
	for i, r := range m.items {
		if i < offset || len(result) >= limit {
			continue
		}
		result = append(result, *r)
	}
	return result, total, nil
}

func (m *mockReportRepo) ListFileRefs(_ context.Context) ([]repository.FileRef, error) {
	var refs []repository.FileRef
	for _, r := range m.items {
		refs = append(refs, repository.FileRef{Kind: repository.KindReport, RecordID: r.ReportID, Ref: r.Filename})
	}
	return refs, nil
}

// ── Failing FileStore ──

// brokenStore 所有写入都返回存储错误
type brokenStore struct {
	FileStore
	err error
}

func (b *brokenStore) Store(_ io.Reader, _ string) (string, error) {
	return "", b.err
}

// ── 测试夹具 ──

type fixture struct {
	repo      *repository.Repository
	users     *mockUserRepo
	lab       *mockLabInfoRepo
	equipment *mockEquipmentRepo
	machines  *mockMachineRepo
	reports   *mockReportRepo
	files     *filestore.Store
	guard     AccessGuard
	logger    *zap.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	files, err := filestore.New(afero.NewMemMapFs(), "/uploads", 1024)
	if err != nil {
		t.Fatalf("创建文件仓库失败: %v", err)
	}

	f := &fixture{
		users:     newMockUserRepo(),
		lab:       newMockLabInfoRepo(),
		equipment: newMockEquipmentRepo(),
		machines:  newMockMachineRepo(),
		reports:   newMockReportRepo(),
		files:     files,
		logger:    zap.NewNop(),
	}
	f.repo = &repository.Repository{
		User:      f.users,
		LabInfo:   f.lab,
		Equipment: f.equipment,
		Machine:   f.machines,
		Report:    f.reports,
	}
	f.guard = NewAccessGuard(f.repo, f.logger)
	return f
}

// identity 创建指定角色的用户并返回其会话身份
func (f *fixture) identity(username string, role model.Role) *Identity {
	user := &model.User{Username: username, PasswordHash: "x", Role: role}
	_ = f.users.Create(context.Background(), user)
	return &Identity{UserID: user.UserID, Username: username, Role: role}
}

func (f *fixture) storedFiles(t *testing.T) []string {
	t.Helper()
	refs, err := f.files.List()
	if err != nil {
		t.Fatalf("列出上传目录失败: %v", err)
	}
	return refs
}

func page(p, size int) *dto.PaginationRequest {
	return &dto.PaginationRequest{Page: p, PageSize: size}
}

var errDBDown = errors.New("database is locked")
