package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	hrAuth "github.com/MrEthical07/hrAuth"
	"github.com/MrEthical07/hrAuth/loginid"
	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretsCmd(t *testing.T) {
	var buf bytes.Buffer
	cmd := &SecretsCmd{Bytes: 64, out: &buf}
	require.NoError(t, cmd.Run())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	access := strings.TrimPrefix(lines[0], "HRAUTH_JWT_ACCESS_SECRET=")
	refresh := strings.TrimPrefix(lines[1], "HRAUTH_JWT_REFRESH_SECRET=")
	assert.Len(t, access, 128)
	assert.Len(t, refresh, 128)
	assert.NotEqual(t, access, refresh)

	assert.Error(t, (&SecretsCmd{Bytes: 16}).Run())
}

func TestEngineFlagsConfig(t *testing.T) {
	f := EngineFlags{
		AccessSecret:     strings.Repeat("a", 40),
		RefreshSecret:    strings.Repeat("b", 40),
		AccessTTL:        10 * time.Minute,
		RefreshTTL:       24 * time.Hour,
		FixedPrefix:      "OI",
		WidenSerial:      true,
		MaxLoginAttempts: 7,
		LoginCooldown:    time.Minute,
		StoreTimeout:     time.Second,
	}
	cfg := f.config("tenant-x")

	assert.Equal(t, loginid.PrefixFixed, cfg.LoginID.PrefixMode)
	assert.Equal(t, "OI", cfg.LoginID.FixedPrefix)
	assert.Equal(t, loginid.OverflowWiden, cfg.LoginID.Overflow)
	assert.Equal(t, 7, cfg.Security.MaxLoginAttempts)
	assert.Equal(t, "tenant-x", cfg.Store.RedisPrefix)
	assert.NoError(t, cfg.Validate())
}

func TestDevSecretsFillsOnlyMissing(t *testing.T) {
	f := EngineFlags{AccessSecret: strings.Repeat("a", 40)}
	require.NoError(t, f.devSecrets(zerolog.Nop()))
	assert.Equal(t, strings.Repeat("a", 40), f.AccessSecret)
	assert.Len(t, f.RefreshSecret, 128)
}

func TestTenantCommandsOverRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	log := zerolog.Nop()

	ef := EngineFlags{
		AccessSecret:     strings.Repeat("a", 40),
		RefreshSecret:    strings.Repeat("b", 40),
		AccessTTL:        15 * time.Minute,
		RefreshTTL:       time.Hour,
		MaxLoginAttempts: 5,
		LoginCooldown:    time.Minute,
		StoreTimeout:     time.Second,
	}
	bf := BackendFlags{RedisAddr: mr.Addr(), RedisPrefix: "cli", ConnectRetry: time.Second}

	var tenantID string
	require.NoError(t, withEngine(ctx, log, &ef, &bf, func(engine *hrAuth.Engine) error {
		res, err := engine.SignupAdmin(ctx, hrAuth.AdminSignupRequest{
			CompanyName: "Acme Corp", Email: "boss@acme.test", Password: "admin-password-1",
		})
		if err != nil {
			return err
		}
		tenantID = res.Tenant.ID
		return nil
	}))

	set := &TenantSetCodeCmd{TenantID: tenantID, Code: "zz", Engine: ef, Backends: bf}
	require.NoError(t, set.Run(ctx, &Globals{}))

	var buf bytes.Buffer
	check := &TenantCheckCmd{Year: 2025, FailOnMismatch: true, Engine: ef, Backends: bf, out: &buf}
	err := check.Run(ctx, &Globals{})
	require.Error(t, err)
	assert.Contains(t, buf.String(), "ZZ *")
	assert.Contains(t, buf.String(), "AC")
	assert.Contains(t, buf.String(), "SERIAL 2025")
}

func TestBuildEngineRequiresSecrets(t *testing.T) {
	_, err := buildEngine(&EngineFlags{}, &backends{}, "hr", zerolog.Nop())
	assert.ErrorContains(t, err, "hrauth secrets")
}

func TestOpenFailsFastWhenRedisIsDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	bf := BackendFlags{RedisAddr: addr, RedisPrefix: "cli", ConnectRetry: 200 * time.Millisecond}
	_, err = bf.open(context.Background(), zerolog.Nop())
	assert.ErrorContains(t, err, "failed to connect to redis")
}
