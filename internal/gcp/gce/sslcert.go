package gce

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"gcpctl/internal/lib/errs"
	"gcpctl/internal/resource"
	"github.com/pkg/errors"
	"google.golang.org/api/compute/v1"
	"math/big"
	"net"
	"time"
)

type SslCertDomainParams struct {
	Name   string `validate:"required"`
	Domain string `validate:"required,fqdn"`
}

type SslCertParams struct {
	Name string `validate:"required"`
	IP   string `validate:"required,ip"`
}

// SslCert is a global ssl certificate. Certificates are replaced rather than edited, so
// an existing one is never validated field by field.
type SslCert struct {
	scope Scope
	name  string
	body  func() (*compute.SslCertificate, error)
}

// NewSslCertDomain ensures a google managed certificate for one domain.
func NewSslCertDomain(scope Scope, params SslCertDomainParams) (*SslCert, error) {
	if err := scope.check(false); err != nil {
		return nil, err
	}
	if err := errs.Validate("ssl cert params", params); err != nil {
		return nil, err
	}
	return &SslCert{scope: scope, name: params.Name, body: func() (*compute.SslCertificate, error) {
		return &compute.SslCertificate{
			Name:    params.Name,
			Type:    "MANAGED",
			Managed: &compute.SslCertificateManagedSslCertificate{Domains: []string{params.Domain}},
		}, nil
	}}, nil
}

// NewSslCert ensures a self signed certificate for a bare ip address.
func NewSslCert(scope Scope, params SslCertParams) (*SslCert, error) {
	if err := scope.check(false); err != nil {
		return nil, err
	}
	if err := errs.Validate("ssl cert params", params); err != nil {
		return nil, err
	}
	return &SslCert{scope: scope, name: params.Name, body: func() (*compute.SslCertificate, error) {
		certificate, privateKey, err := SelfSignedCertificate(params.IP, time.Now())
		if err != nil {
			return nil, err
		}
		return &compute.SslCertificate{
			Name:        params.Name,
			Certificate: string(certificate),
			PrivateKey:  string(privateKey),
		}, nil
	}}, nil
}

func (c *SslCert) Kind() string {
	return "ssl cert"
}

func (c *SslCert) Name() string {
	return c.name
}

func (c *SslCert) Desired() resource.Config {
	return resource.Config{"name": c.name}
}

func (c *SslCert) NormalizeDesired(resource.Config) resource.Config {
	return resource.Config{}
}

func (c *SslCert) NormalizeActual(r resource.Remote) resource.Remote {
	return r
}

func (c *SslCert) Fetch(ctx context.Context) (resource.Remote, error) {
	return remoteOf(c.scope.Service.SslCertificates.Get(c.scope.Project, c.name).Context(ctx).Do())
}

func (c *SslCert) Create(ctx context.Context) (resource.Remote, error) {
	body, err := c.body()
	if err != nil {
		return nil, err
	}
	return c.scope.insert(ctx, nil, func(ctx context.Context, requestID string) (*compute.Operation, error) {
		return c.scope.Service.SslCertificates.Insert(c.scope.Project, body).RequestId(requestID).Context(ctx).Do()
	}, c.Fetch)
}

// SelfSignedCertificate returns PEM encoded certificate and RSA key for ip, valid for
// 9999 days from now.
func SelfSignedCertificate(ip string, now time.Time) (certificate, privateKey []byte, err error) {
	addr := net.ParseIP(ip)
	if addr == nil {
		return nil, nil, errs.Assertf("not an ip address: %s", ip)
	}
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, errors.Wrap(err, "generate key")
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, nil, errors.Wrap(err, "generate serial")
	}
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:   ip,
			Organization: []string{"Fake Name"},
			Country:      []string{"US"},
		},
		NotBefore:             now,
		NotAfter:              now.Add(9999 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IPAddresses:           []net.IP{addr},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, nil, errors.Wrap(err, "create certificate")
	}
	certificate = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	privateKey = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	return certificate, privateKey, nil
}
