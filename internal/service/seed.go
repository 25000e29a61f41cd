package service

import (
	"context"
	"errors"
	"log/slog"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
)

// SeedOptions configures the bootstrap administrator.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

// SeedAccessControl creates the default privileges and roles, grants ADMIN
// everything and SALESPERSON the counter subset, and creates the first
// administrator when nobody has that email yet. It is safe to run on every
// start.
func SeedAccessControl(ctx context.Context, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository, userRepo repository.UserRepository, opts SeedOptions, log *slog.Logger) error {
	if err := privilegeRepo.SeedDefaults(ctx); err != nil {
		return err
	}
	if err := roleRepo.SeedDefaults(ctx); err != nil {
		return err
	}

	allPrivileges, err := privilegeRepo.FindAll(ctx)
	if err != nil {
		return err
	}

	adminRole, err := roleRepo.FindByCode(ctx, model.RoleAdmin)
	if err != nil {
		return err
	}
	if len(adminRole.Privileges) != len(allPrivileges) {
		if err := roleRepo.ReplacePrivileges(ctx, adminRole, allPrivileges); err != nil {
			return err
		}
		log.Info("ADMIN role granted all privileges", "count", len(allPrivileges))
	}

	salesRole, err := roleRepo.FindByCode(ctx, model.RoleSalesperson)
	if err != nil {
		return err
	}
	if len(salesRole.Privileges) == 0 {
		counter, err := privilegeRepo.FindByCodes(ctx, model.SalespersonPrivileges)
		if err != nil {
			return err
		}
		if err := roleRepo.ReplacePrivileges(ctx, salesRole, counter); err != nil {
			return err
		}
		log.Info("SALESPERSON role granted counter privileges", "count", len(counter))
	}

	if opts.AdminEmail == "" {
		return nil
	}
	if _, err := userRepo.FindByEmail(ctx, opts.AdminEmail); err == nil {
		return nil
	} else if !repository.IsNotFound(err) {
		return err
	}
	if opts.AdminPassword == "" {
		return errors.New("seed admin password is empty")
	}

	admin := &model.User{
		Email:      opts.AdminEmail,
		FullName:   "Administrator",
		RoleID:     &adminRole.ID,
		IsActive:   true,
		Privileges: adminRole.Privileges,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(opts.AdminPassword); err != nil {
		return err
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return err
	}
	log.Info("admin user created", "email", opts.AdminEmail)
	return nil
}
