// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/server/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/scores/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["积分"], "summary": "查询我的积分", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/api/v1/scores/me/history": {"get": {"security": [{"BearerAuth": []}], "tags": ["积分"], "summary": "查询积分流水", "parameters": [{"type": "integer", "default": 1, "name": "page", "in": "query"}, {"type": "integer", "default": 10, "name": "page_size", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/api/v1/scores/leaderboard": {"get": {"tags": ["积分"], "summary": "积分排行榜", "parameters": [{"type": "integer", "default": 20, "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/api/v1/scores/activities": {"post": {"security": [{"BearerAuth": []}], "tags": ["积分"], "summary": "记录活动积分", "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.activityRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/api/v1/contents/counts": {"post": {"tags": ["统计"], "summary": "批量查询内容追踪人数", "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.contentCountsRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/api/v1/tags/counts": {"get": {"tags": ["统计"], "summary": "各标签名人数", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/api/v1/recommendations": {"post": {"security": [{"BearerAuth": []}], "tags": ["推荐"], "summary": "推荐内容给好友", "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.sendRecommendationRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/api/v1/recommendations/{id}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["推荐"], "summary": "撤回未处理的推荐", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/api/v1/recommendations/{id}/respond": {"post": {"security": [{"BearerAuth": []}], "tags": ["推荐"], "summary": "处理收到的推荐", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.respondRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/api/v1/recommendations/received": {"get": {"security": [{"BearerAuth": []}], "tags": ["推荐"], "summary": "收到的推荐", "parameters": [{"type": "string", "name": "status", "in": "query"}, {"type": "integer", "default": 1, "name": "page", "in": "query"}, {"type": "integer", "default": 10, "name": "page_size", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/api/v1/recommendations/sent": {"get": {"security": [{"BearerAuth": []}], "tags": ["推荐"], "summary": "发出的推荐", "parameters": [{"type": "string", "name": "status", "in": "query"}, {"type": "integer", "default": 1, "name": "page", "in": "query"}, {"type": "integer", "default": 10, "name": "page_size", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/api/v1/achievements": {"get": {"tags": ["称号"], "summary": "称号目录", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/api/v1/achievements/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["称号"], "summary": "我的称号", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/api/v1/achievements/evaluate": {"post": {"security": [{"BearerAuth": []}], "tags": ["称号"], "summary": "检查称号解锁", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/api/v1/relations/follow": {"post": {"security": [{"BearerAuth": []}], "tags": ["关系链"], "summary": "关注用户", "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.followRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/api/v1/relations/unfollow": {"post": {"security": [{"BearerAuth": []}], "tags": ["关系链"], "summary": "取消关注", "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.followRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/api/v1/relations/{user_id}/following": {"get": {"tags": ["关系链"], "summary": "查询关注列表", "parameters": [{"type": "string", "name": "user_id", "in": "path", "required": true}, {"type": "integer", "default": 1, "name": "page", "in": "query"}, {"type": "integer", "default": 10, "name": "page_size", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}},
        "/api/v1/relations/{user_id}/followers": {"get": {"tags": ["关系链"], "summary": "查询粉丝列表", "parameters": [{"type": "string", "name": "user_id", "in": "path", "required": true}, {"type": "integer", "default": 1, "name": "page", "in": "query"}, {"type": "integer", "default": 10, "name": "page_size", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}}
    },
    "definitions": {
        "response.Response": {"type": "object", "properties": {"code": {"type": "integer"}, "message": {"type": "string"}, "error": {"type": "string"}, "data": {}}},
        "handler.activityRequest": {"type": "object", "required": ["action"], "properties": {"action": {"type": "string"}, "reference_id": {"type": "string"}}},
        "handler.contentCountsRequest": {"type": "object", "properties": {"content_ids": {"type": "array", "items": {"type": "string"}}}},
        "handler.sendRecommendationRequest": {"type": "object", "required": ["receiver_id", "user_content_id"], "properties": {"receiver_id": {"type": "string"}, "user_content_id": {"type": "string"}, "message": {"type": "string"}}},
        "handler.respondRequest": {"type": "object", "required": ["accept"], "properties": {"accept": {"type": "boolean"}}},
        "handler.followRequest": {"type": "object", "required": ["user_id"], "properties": {"user_id": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Feel&Note Core API",
	Description:      "Scores, recommendations, achievements and aggregate counts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
