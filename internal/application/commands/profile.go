package commands

import (
	"context"
	"fmt"

	"stylebook/internal/application"
	"stylebook/internal/domain"
)

// ProfileFields carries the editable profile fields. Absent fields keep the
// stored value when editing and default to "" when adding.
type ProfileFields struct {
	Name         domain.Optional[string]
	Title        domain.Optional[string]
	Description  domain.Optional[string]
	Path         domain.Optional[string]
	TemplatesURL domain.Optional[string]
	SymbologyURL domain.Optional[string]
}

func (f ProfileFields) apply(p *domain.Profile) {
	for _, field := range []struct {
		src domain.Optional[string]
		dst *string
	}{
		{f.Name, &p.Name},
		{f.Title, &p.Title},
		{f.Description, &p.Description},
		{f.Path, &p.Path},
		{f.TemplatesURL, &p.TemplatesURL},
		{f.SymbologyURL, &p.SymbologyURL},
	} {
		if v, ok := field.src.Get(); ok {
			*field.dst = v
		}
	}
}

// SaveProfileResult contains the result of adding or editing a profile
type SaveProfileResult struct {
	Profile *domain.Profile
	Renamed bool
	Message string
}

// SaveProfileCommand adds a profile, or edits one when Ref is set
type SaveProfileCommand struct {
	profiles *application.ProfileManager
	Ref      string
	Fields   ProfileFields
	// Use makes the saved profile current
	Use bool
}

// NewSaveProfileCommand creates a new SaveProfileCommand
func NewSaveProfileCommand(profiles *application.ProfileManager, ref string, fields ProfileFields) *SaveProfileCommand {
	return &SaveProfileCommand{
		profiles: profiles,
		Ref:      ref,
		Fields:   fields,
	}
}

// Validate checks the fields that can be checked without the store
func (c *SaveProfileCommand) Validate() error {
	if c.Ref == "" {
		name, _ := c.Fields.Name.Get()
		if err := application.ValidateRequired("name", name); err != nil {
			return err
		}
	} else if name, ok := c.Fields.Name.Get(); ok {
		if err := application.ValidateRequired("name", name); err != nil {
			return err
		}
	}
	if err := application.ValidateURL("templatesURL", c.Fields.TemplatesURL.Or("")); err != nil {
		return err
	}
	return application.ValidateURL("symbologyURL", c.Fields.SymbologyURL.Or(""))
}

// Execute runs the save profile command
func (c *SaveProfileCommand) Execute(ctx context.Context) (*SaveProfileResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var (
		p      *domain.Profile
		action = "Added"
	)
	if c.Ref == "" {
		p = domain.NewProfile("")
	} else {
		existing, err := c.profiles.Resolve(ctx, c.Ref)
		if err != nil {
			return nil, err
		}
		p = existing
		action = "Updated"
	}

	c.Fields.apply(p)
	requested := p.Name

	if err := c.profiles.Save(ctx, p); err != nil {
		return nil, err
	}

	if c.Use {
		if err := c.profiles.SetCurrent(ctx, p.ID); err != nil {
			return nil, err
		}
	}

	result := &SaveProfileResult{
		Profile: p,
		Renamed: p.Name != requested,
		Message: fmt.Sprintf("%s profile %s (%s)", action, p.Name, p.ID),
	}
	if result.Renamed {
		result.Message += fmt.Sprintf("; %q was taken", requested)
	}
	return result, nil
}

// DeleteProfileCommand deletes a profile with its catalogs
type DeleteProfileCommand struct {
	profiles *application.ProfileManager
	Ref      string
}

// NewDeleteProfileCommand creates a new DeleteProfileCommand
func NewDeleteProfileCommand(profiles *application.ProfileManager, ref string) *DeleteProfileCommand {
	return &DeleteProfileCommand{profiles: profiles, Ref: ref}
}

// Validate checks if the delete operation is valid
func (c *DeleteProfileCommand) Validate() error {
	return application.ValidateRequired("profile", c.Ref)
}

// Execute runs the delete command and returns a message
func (c *DeleteProfileCommand) Execute(ctx context.Context) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}

	p, err := c.profiles.Resolve(ctx, c.Ref)
	if err != nil {
		return "", err
	}
	if err := c.profiles.Delete(ctx, p.ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted profile %s (%s)", p.Name, p.ID), nil
}

// UseProfileCommand makes a profile current
type UseProfileCommand struct {
	profiles *application.ProfileManager
	Ref      string
}

// NewUseProfileCommand creates a new UseProfileCommand
func NewUseProfileCommand(profiles *application.ProfileManager, ref string) *UseProfileCommand {
	return &UseProfileCommand{profiles: profiles, Ref: ref}
}

// Execute runs the use command and returns the selected profile
func (c *UseProfileCommand) Execute(ctx context.Context) (*domain.Profile, error) {
	if err := application.ValidateRequired("profile", c.Ref); err != nil {
		return nil, err
	}

	p, err := c.profiles.Resolve(ctx, c.Ref)
	if err != nil {
		return nil, err
	}
	if err := c.profiles.SetCurrent(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}
