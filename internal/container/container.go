package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/openlibro/librogate/config"
	"github.com/openlibro/librogate/internal/gateway"
	"github.com/openlibro/librogate/internal/session"
	"github.com/openlibro/librogate/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	redisClient *redis.Client
	gw          gateway.API
	sessions    *session.Provider
	jwtManager  *helpers.JWTManager
)

func SetConfig(c *config.Config)           { cfg = c }
func GetConfig() *config.Config            { return cfg }
func SetLogger(l *logrus.Logger)           { logger = l }
func GetLogger() *logrus.Logger            { return logger }
func SetRedis(r *redis.Client)             { redisClient = r }
func GetRedis() *redis.Client              { return redisClient }
func SetGateway(g gateway.API)             { gw = g }
func GetGateway() gateway.API              { return gw }
func SetSessions(p *session.Provider)      { sessions = p }
func GetSessions() *session.Provider       { return sessions }
func SetJWT(m *helpers.JWTManager)         { jwtManager = m }
func GetJWT() *helpers.JWTManager          { return jwtManager }
