package server

//go:generate swag init -g internal/server/server.go -o internal/server/docs

// @title Clauseguard API
// @version 0.1
// @description Contract risk analysis: upload a contract, get matched risk clauses, explanations and a 0-100 safety score.
// @contact.name Clauseguard Maintainers
// @contact.url https://github.com/raysh454/clauseguard
// @BasePath /
