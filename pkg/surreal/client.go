package surreal

import (
	"context"
	"fmt"
	"reflect"
	"regexp"

	"github.com/surrealdb/surrealdb.go"
)

type Client struct {
	db *surrealdb.DB
}

// identifierRegex ensures that table names and fields only contain alphanumeric characters and underscores
var identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateIdentifier rejects anything that cannot be interpolated into a query as a table or field name.
func ValidateIdentifier(s string) error {
	if !identifierRegex.MatchString(s) {
		return fmt.Errorf("invalid identifier: %s", s)
	}
	return nil
}

func NewClient(host, user, pass, namespace, database string) (*Client, error) {
	db, err := surrealdb.New(host)
	if err != nil {
		return nil, fmt.Errorf("failed to create surrealdb client: %w", err)
	}

	if _, err = db.SignIn(context.Background(), map[string]interface{}{
		"user": user,
		"pass": pass,
	}); err != nil {
		return nil, fmt.Errorf("failed to signin to surrealdb: %w", err)
	}

	if err = db.Use(context.Background(), namespace, database); err != nil {
		return nil, fmt.Errorf("failed to use surrealdb namespace/database: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) Close() {
	c.db.Close(context.Background())
}

func (c *Client) Query(ctx context.Context, sql string, vars map[string]interface{}) (interface{}, error) {
	result, err := surrealdb.Query[interface{}](ctx, c.db, sql, vars)
	if err != nil {
		return nil, err
	}
	return unwrapResult(result), nil
}

// unwrapResult pulls the Result field out of the last statement's response.
func unwrapResult(result interface{}) interface{} {
	rv := reflect.ValueOf(result)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}

	if rv.Kind() == reflect.Struct {
		resField := rv.FieldByName("Result")
		if resField.IsValid() {
			return resField.Interface()
		}
	} else if rv.Kind() == reflect.Slice {
		if rv.Len() > 0 {
			lastElem := rv.Index(rv.Len() - 1)
			if lastElem.Kind() == reflect.Struct {
				resField := lastElem.FieldByName("Result")
				if resField.IsValid() {
					return resField.Interface()
				}
			}
		}
	}

	return result
}
