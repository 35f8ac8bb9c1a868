package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"gorm.io/gorm"

	"github.com/nmashkov/yatube-project/config"
	"github.com/nmashkov/yatube-project/internal/adapters/secondary/graph"
	"github.com/nmashkov/yatube-project/internal/adapters/secondary/repository"
	"github.com/nmashkov/yatube-project/internal/core/ports"
)

// app regroupe les connexions partagées par toutes les commandes
type app struct {
	cfg      config.Config
	db       *gorm.DB
	posts    ports.PostRepository
	groups   ports.GroupRepository
	users    ports.UserRepository
	comments ports.CommentRepository
	follows  ports.FollowRepository
	closers  []func()
}

func loadConfig() (config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func openApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg}

	// 1. Base relationnelle
	db, err := openDatabase(ctx, a, cfg)
	if err != nil {
		return nil, err
	}
	a.db = db
	a.posts = repository.NewPostRepo(db)
	a.groups = repository.NewGroupRepo(db)
	a.users = repository.NewUserRepo(db)
	a.comments = repository.NewCommentRepo(db)
	a.follows = repository.NewFollowRepo(db)

	// 2. Graphe des abonnements (optionnel)
	if cfg.FollowStore == "neo4j" {
		follows, err := openFollowGraph(ctx, a, cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.follows = follows
	}

	return a, nil
}

func openDatabase(ctx context.Context, a *app, cfg config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == "postgres" {
		db, pool, err := repository.OpenPostgres(ctx, cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		slog.Info("✅ Connected to Postgres")
		return db, nil
	}

	db, err := repository.OpenSQLite(cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	a.closers = append(a.closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	slog.Info("✅ Opened SQLite", "path", cfg.DBURL)
	return db, nil
}

func openFollowGraph(ctx context.Context, a *app, cfg config.Config) (*graph.FollowGraph, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	a.closers = append(a.closers, func() { _ = driver.Close(context.Background()) })

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("neo4j unreachable: %w", err)
	}
	follows := graph.NewFollowGraph(driver)
	if err := follows.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("neo4j schema: %w", err)
	}
	slog.Info("✅ Connected to Neo4j", "uri", cfg.Neo4jURI)
	return follows, nil
}

// Close libère les ressources dans l'ordre inverse de leur ouverture
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
