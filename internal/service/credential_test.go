package service

import (
	"context"
	"testing"

	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/testutil"
	"github.com/comanda/comanda/internal/types"
	"github.com/stretchr/testify/suite"
)

type CredentialServiceSuite struct {
	testutil.BaseServiceTestSuite
	service CredentialService
}

func TestCredentialService(t *testing.T) {
	suite.Run(t, new(CredentialServiceSuite))
}

func (s *CredentialServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewCredentialService(newTestParams(&s.BaseServiceTestSuite))
}

func (s *CredentialServiceSuite) TestConnectEncryptsToken() {
	token := "APP_USR-1234567890-secret"

	cred, err := s.service.Connect(s.GetContext(), token, false)
	s.NoError(err)
	s.Equal("cret", cred.Last4)
	s.False(cred.Sandbox)
	s.NotEqual(token, cred.Ciphertext)
	s.NotContains(cred.Ciphertext, token)

	// The stored blob decrypts back to the original token
	stored, err := s.GetStores().CredentialRepo.GetByTenant(s.GetContext(), types.DefaultTenantID)
	s.NoError(err)
	decrypted, err := s.GetVault().Decrypt(stored.Ciphertext)
	s.NoError(err)
	s.Equal(token, decrypted)
}

func (s *CredentialServiceSuite) TestConnectReplacesPrevious() {
	_, err := s.service.Connect(s.GetContext(), "APP_USR-first-token-1111", true)
	s.Require().NoError(err)

	cred, err := s.service.Connect(s.GetContext(), "APP_USR-second-token-2222", false)
	s.NoError(err)
	s.Equal("2222", cred.Last4)

	stored, err := s.GetStores().CredentialRepo.GetByTenant(s.GetContext(), types.DefaultTenantID)
	s.NoError(err)
	decrypted, err := s.GetVault().Decrypt(stored.Ciphertext)
	s.NoError(err)
	s.Equal("APP_USR-second-token-2222", decrypted)
}

func (s *CredentialServiceSuite) TestConnectRejectsShortToken() {
	_, err := s.service.Connect(s.GetContext(), "short", false)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *CredentialServiceSuite) TestConnectRequiresTenant() {
	_, err := s.service.Connect(context.Background(), "APP_USR-valid-token", false)
	s.Error(err)
}

func (s *CredentialServiceSuite) TestGetAndDisconnect() {
	_, err := s.service.Connect(s.GetContext(), "APP_USR-token-9999", true)
	s.Require().NoError(err)

	cred, err := s.service.Get(s.GetContext())
	s.NoError(err)
	s.Equal("9999", cred.Last4)
	s.True(cred.Sandbox)

	s.NoError(s.service.Disconnect(s.GetContext()))

	_, err = s.service.Get(s.GetContext())
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *CredentialServiceSuite) TestDisconnectWithoutCredential() {
	err := s.service.Disconnect(s.GetContext())
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
