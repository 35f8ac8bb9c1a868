package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/nmashkov/yatube-project/internal/core/ports"
)

// FollowGraph keeps the follow relation as (:User)-[:FOLLOWS]->(:User) edges.
// Nodes only carry the relational user id.
type FollowGraph struct {
	driver neo4j.DriverWithContext
}

var _ ports.FollowRepository = (*FollowGraph)(nil)

func NewFollowGraph(driver neo4j.DriverWithContext) *FollowGraph {
	return &FollowGraph{driver: driver}
}

// EnsureSchema crée la contrainte d'unicité (et donc l'index) sur User.id
func (g *FollowGraph) EnsureSchema(ctx context.Context) error {
	return g.write(ctx,
		`CREATE CONSTRAINT yatube_user_id IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`,
		nil)
}

// Create est idempotent grâce à MERGE
func (g *FollowGraph) Create(ctx context.Context, userID, authorID uint) error {
	return g.write(ctx, `
		MERGE (a:User {id: $userId})
		MERGE (b:User {id: $authorId})
		MERGE (a)-[r:FOLLOWS]->(b)
		ON CREATE SET r.created_at = datetime()
	`, pair(userID, authorID))
}

func (g *FollowGraph) Delete(ctx context.Context, userID, authorID uint) error {
	return g.write(ctx, `
		MATCH (:User {id: $userId})-[r:FOLLOWS]->(:User {id: $authorId})
		DELETE r
	`, pair(userID, authorID))
}

func (g *FollowGraph) Exists(ctx context.Context, userID, authorID uint) (bool, error) {
	n, err := g.count(ctx, `
		MATCH (:User {id: $userId})-[r:FOLLOWS]->(:User {id: $authorId})
		RETURN count(r) AS n
	`, pair(userID, authorID))
	return n > 0, err
}

func (g *FollowGraph) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	return g.count(ctx, `
		MATCH (:User)-[r:FOLLOWS]->(:User {id: $authorId})
		RETURN count(r) AS n
	`, map[string]any{"authorId": int64(authorID)})
}

func (g *FollowGraph) FollowedAuthorIDs(ctx context.Context, userID uint) ([]uint, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (:User {id: $userId})-[:FOLLOWS]->(b:User)
			RETURN b.id AS authorId ORDER BY authorId
		`, map[string]any{"userId": int64(userID)})
		if err != nil {
			return nil, err
		}

		var ids []uint
		for res.Next(ctx) {
			raw, _ := res.Record().Get("authorId")
			id, ok := raw.(int64)
			if !ok {
				return nil, fmt.Errorf("unexpected author id type %T", raw)
			}
			ids = append(ids, uint(id))
		}
		return ids, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]uint), nil
}

func (g *FollowGraph) write(ctx context.Context, query string, params map[string]any) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, query, params)
		return nil, err
	})
	return err
}

func (g *FollowGraph) count(ctx context.Context, query string, params map[string]any) (int64, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		n, _ := rec.Get("n")
		return n, nil
	})
	if err != nil {
		return 0, err
	}
	n, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected count type %T", result)
	}
	return n, nil
}

func pair(userID, authorID uint) map[string]any {
	return map[string]any{"userId": int64(userID), "authorId": int64(authorID)}
}
