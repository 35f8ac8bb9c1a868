package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nmashkov/yatube-project/internal/adapters/secondary/repository"
	"github.com/nmashkov/yatube-project/internal/adapters/secondary/security"
	"github.com/nmashkov/yatube-project/internal/core/domain"
	"github.com/nmashkov/yatube-project/internal/core/ports"
	"github.com/nmashkov/yatube-project/internal/core/services"
	"github.com/nmashkov/yatube-project/internal/telemetry"
)

// withApp ouvre la base (schéma à jour) pour une commande d'administration
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	telemetry.InitLogger(cfg.Env)

	a, err := openApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := repository.Migrate(a.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return fn(a)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(*app) error {
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return nil
			})
		},
	}
}

// --- GROUPES ---

type groupFixture struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

type groupsFile struct {
	Groups []groupFixture `yaml:"groups"`
}

// parseGroups lit un fichier de fixtures et refuse les entrées incomplètes
func parseGroups(r io.Reader) ([]*domain.Group, error) {
	var file groupsFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode groups: %w", err)
	}

	groups := make([]*domain.Group, 0, len(file.Groups))
	seen := make(map[string]bool, len(file.Groups))
	for i, g := range file.Groups {
		group, err := newGroup(g.Title, g.Slug, g.Description)
		if err != nil {
			return nil, fmt.Errorf("group #%d: %w", i+1, err)
		}
		if seen[group.Slug] {
			return nil, fmt.Errorf("group #%d: duplicate slug %q", i+1, group.Slug)
		}
		seen[group.Slug] = true
		groups = append(groups, group)
	}
	return groups, nil
}

func newGroup(title, slug, description string) (*domain.Group, error) {
	title, slug = strings.TrimSpace(title), strings.TrimSpace(slug)
	if title == "" || slug == "" {
		return nil, errors.New("title and slug are required")
	}
	if strings.ContainsAny(slug, " /?#") {
		return nil, fmt.Errorf("slug %q must be URL safe", slug)
	}
	return &domain.Group{Title: title, Slug: slug, Description: strings.TrimSpace(description)}, nil
}

func groupsCmd() *cobra.Command {
	groupsCmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage post groups",
	}

	loadCmd := &cobra.Command{
		Use:   "load <file.yaml>",
		Short: "Create or update groups from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			groups, err := parseGroups(f)
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app) error {
				return saveGroups(cmd, a.groups, groups)
			})
		},
	}

	var title, slug, description string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create or update a single group",
		RunE: func(cmd *cobra.Command, _ []string) error {
			group, err := newGroup(title, slug, description)
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app) error {
				return saveGroups(cmd, a.groups, []*domain.Group{group})
			})
		},
	}
	createCmd.Flags().StringVar(&title, "title", "", "group title")
	createCmd.Flags().StringVar(&slug, "slug", "", "unique URL slug")
	createCmd.Flags().StringVar(&description, "description", "", "group description")
	_ = createCmd.MarkFlagRequired("title")
	_ = createCmd.MarkFlagRequired("slug")

	groupsCmd.AddCommand(loadCmd, createCmd)
	return groupsCmd
}

func saveGroups(cmd *cobra.Command, repo ports.GroupRepository, groups []*domain.Group) error {
	for _, g := range groups {
		if err := repo.Save(cmd.Context(), g); err != nil {
			return fmt.Errorf("save group %q: %w", g.Slug, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "group %s (id %d)\n", g.Slug, g.ID)
	}
	return nil
}

// --- UTILISATEURS ---

func usersCmd() *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}

	var cmdIn ports.SignUpCmd
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmdIn.Password == "" {
				cmdIn.Password = os.Getenv("YATUBE_PASSWORD")
			}
			return withApp(cmd, func(a *app) error {
				// Pas de session ici : le fournisseur de jetons n'est jamais appelé
				tokens, err := security.NewJWTProvider(a.cfg.SessionSecret, time.Minute)
				if err != nil {
					return err
				}
				identity := services.NewIdentityService(a.users, security.NewArgon2Hasher(nil), tokens, a.cfg.SessionTTL)

				user, err := identity.SignUp(cmd.Context(), cmdIn)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user %s (id %d)\n", user.Username, user.ID)
				return nil
			})
		},
	}
	createCmd.Flags().StringVar(&cmdIn.Username, "username", "", "login name")
	createCmd.Flags().StringVar(&cmdIn.Password, "password", "", "password (or YATUBE_PASSWORD)")
	createCmd.Flags().StringVar(&cmdIn.FirstName, "first-name", "", "first name")
	createCmd.Flags().StringVar(&cmdIn.LastName, "last-name", "", "last name")
	createCmd.Flags().StringVar(&cmdIn.Email, "email", "", "email address")
	_ = createCmd.MarkFlagRequired("username")

	usersCmd.AddCommand(createCmd)
	return usersCmd
}
