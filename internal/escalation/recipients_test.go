// Package escalation - Test các recipient resolver strategy.
package escalation

import (
	"context"
	"testing"

	escmodels "hsse_platform/internal/api/escalation/models"
	"hsse_platform/internal/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeUserDirectory đọc user từ map in-memory.
type fakeUserDirectory struct {
	users map[primitive.ObjectID]escmodels.HsseUser
}

func (f *fakeUserDirectory) FindActiveById(ctx context.Context, id primitive.ObjectID) (escmodels.HsseUser, error) {
	user, ok := f.users[id]
	if !ok {
		return escmodels.HsseUser{}, common.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserDirectory) FindActiveByRole(ctx context.Context, role string) ([]escmodels.HsseUser, error) {
	var result []escmodels.HsseUser
	for _, user := range f.users {
		for _, r := range user.Roles {
			if r == role {
				result = append(result, user)
				break
			}
		}
	}
	return result, nil
}

type fakeDepartmentDirectory struct {
	departments map[primitive.ObjectID]escmodels.HsseDepartment
}

func (f *fakeDepartmentDirectory) FindOneById(ctx context.Context, id primitive.ObjectID) (escmodels.HsseDepartment, error) {
	department, ok := f.departments[id]
	if !ok {
		return escmodels.HsseDepartment{}, common.ErrNotFound
	}
	return department, nil
}

func TestDirectUserResolver(t *testing.T) {
	userID := primitive.NewObjectID()
	users := &fakeUserDirectory{users: map[primitive.ObjectID]escmodels.HsseUser{
		userID: {ID: userID, Name: "An", Email: "an@example.com", IsActive: true},
	}}
	resolvers := NewRecipientResolvers(users, &fakeDepartmentDirectory{})
	resolver := resolvers[escmodels.StrategyDirectUser]

	recipients, err := resolver.Resolve(context.Background(), &escmodels.EscalationAction{TargetRef: userID.Hex()}, &escmodels.ItemSummary{})
	if err != nil {
		t.Fatalf("Resolve trả về lỗi: %v", err)
	}
	if len(recipients) != 1 || recipients[0].UserID != userID.Hex() {
		t.Errorf("Phải resolve đúng user %s, nhận được: %v", userID.Hex(), recipients)
	}

	// TargetRef không phải ObjectID hợp lệ
	if _, err := resolver.Resolve(context.Background(), &escmodels.EscalationAction{TargetRef: "not-an-id"}, &escmodels.ItemSummary{}); err == nil {
		t.Error("TargetRef không hợp lệ phải trả về lỗi")
	}
}

func TestRoleGroupResolver(t *testing.T) {
	managerA := primitive.NewObjectID()
	managerB := primitive.NewObjectID()
	worker := primitive.NewObjectID()
	users := &fakeUserDirectory{users: map[primitive.ObjectID]escmodels.HsseUser{
		managerA: {ID: managerA, Name: "A", Roles: []string{"hsse_manager"}},
		managerB: {ID: managerB, Name: "B", Roles: []string{"hsse_manager", "auditor"}},
		worker:   {ID: worker, Name: "C", Roles: []string{"worker"}},
	}}
	resolvers := NewRecipientResolvers(users, &fakeDepartmentDirectory{})
	resolver := resolvers[escmodels.StrategyRoleGroup]

	recipients, err := resolver.Resolve(context.Background(), &escmodels.EscalationAction{TargetRef: "hsse_manager"}, &escmodels.ItemSummary{})
	if err != nil {
		t.Fatalf("Resolve trả về lỗi: %v", err)
	}
	if len(recipients) != 2 {
		t.Errorf("Phải resolve đúng 2 manager, nhận được %d", len(recipients))
	}
}

func TestSupervisorResolver(t *testing.T) {
	supervisorID := primitive.NewObjectID()
	reporterID := primitive.NewObjectID()
	users := &fakeUserDirectory{users: map[primitive.ObjectID]escmodels.HsseUser{
		supervisorID: {ID: supervisorID, Name: "Supervisor"},
		reporterID:   {ID: reporterID, Name: "Reporter", SupervisorID: supervisorID},
	}}
	resolvers := NewRecipientResolvers(users, &fakeDepartmentDirectory{})
	resolver := resolvers[escmodels.StrategySupervisor]

	recipients, err := resolver.Resolve(context.Background(), &escmodels.EscalationAction{}, &escmodels.ItemSummary{ReporterID: reporterID})
	if err != nil {
		t.Fatalf("Resolve trả về lỗi: %v", err)
	}
	if len(recipients) != 1 || recipients[0].UserID != supervisorID.Hex() {
		t.Errorf("Phải resolve supervisor của reporter, nhận được: %v", recipients)
	}

	// Reporter không có supervisor
	orphanID := primitive.NewObjectID()
	users.users[orphanID] = escmodels.HsseUser{ID: orphanID, Name: "Orphan"}
	if _, err := resolver.Resolve(context.Background(), &escmodels.EscalationAction{}, &escmodels.ItemSummary{ReporterID: orphanID}); err == nil {
		t.Error("Reporter không có supervisor phải trả về lỗi")
	}
}

func TestDepartmentHeadResolver(t *testing.T) {
	headID := primitive.NewObjectID()
	departmentID := primitive.NewObjectID()
	headlessID := primitive.NewObjectID()

	users := &fakeUserDirectory{users: map[primitive.ObjectID]escmodels.HsseUser{
		headID: {ID: headID, Name: "Head"},
	}}
	departments := &fakeDepartmentDirectory{departments: map[primitive.ObjectID]escmodels.HsseDepartment{
		departmentID: {ID: departmentID, Name: "Operations", HeadUserID: headID},
		headlessID:   {ID: headlessID, Name: "Vacant"},
	}}
	resolvers := NewRecipientResolvers(users, departments)
	resolver := resolvers[escmodels.StrategyDepartmentHead]

	recipients, err := resolver.Resolve(context.Background(), &escmodels.EscalationAction{}, &escmodels.ItemSummary{DepartmentID: departmentID})
	if err != nil {
		t.Fatalf("Resolve trả về lỗi: %v", err)
	}
	if len(recipients) != 1 || recipients[0].UserID != headID.Hex() {
		t.Errorf("Phải resolve trưởng bộ phận, nhận được: %v", recipients)
	}

	// Bộ phận chưa có trưởng bộ phận là lỗi cấu hình
	if _, err := resolver.Resolve(context.Background(), &escmodels.EscalationAction{}, &escmodels.ItemSummary{DepartmentID: headlessID}); err == nil {
		t.Error("Bộ phận không có trưởng phải trả về lỗi cấu hình")
	}
}
