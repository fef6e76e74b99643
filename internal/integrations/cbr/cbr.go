package cbr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Dan9191/loan-service/internal/config"
	"github.com/Dan9191/loan-service/internal/repository"
	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
)

const cacheKey = "cbr:key_rate"

// CBRClient fetches the central bank key rate, the floor for lending rates
type CBRClient struct {
	url    string
	client *http.Client
	cache  repository.Cache
	ttl    time.Duration
	margin float64
	log    *logrus.Logger
	now    func() time.Time
}

// NewCBRClient initializes a new CBR client
func NewCBRClient(cfg *config.Config, cache repository.Cache, log *logrus.Logger) *CBRClient {
	return &CBRClient{
		url: cfg.CBRURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:  cache,
		ttl:    cfg.KeyRateTTL,
		margin: cfg.BankMargin,
		log:    log,
		now:    time.Now,
	}
}

// buildSOAPRequest creates a SOAP request for the last 30 days of key rates
func (c *CBRClient) buildSOAPRequest() string {
	now := c.now()
	fromDate := now.AddDate(0, 0, -30).Format("2006-01-02")
	toDate := now.Format("2006-01-02")
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
			<soap12:Body>
				<KeyRate xmlns="http://web.cbr.ru/">
					<fromDate>%s</fromDate>
					<ToDate>%s</ToDate>
				</KeyRate>
			</soap12:Body>
		</soap12:Envelope>`, fromDate, toDate)
}

// sendRequest sends SOAP request to CBR
func (c *CBRClient) sendRequest(ctx context.Context, soapRequest string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBufferString(soapRequest))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/KeyRate")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("CBR XML response: %s", string(body))
	return body, nil
}

// parseXMLResponse extracts the most recent key rate
func parseXMLResponse(rawBody []byte) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return 0, fmt.Errorf("failed to parse XML: %w", err)
	}

	krElements := doc.FindElements("//diffgram/KeyRate/KR")
	if len(krElements) == 0 {
		return 0, fmt.Errorf("no key rate data found in XML")
	}

	// The service lists the newest rate first
	rateElement := krElements[0].FindElement("./Rate")
	if rateElement == nil {
		return 0, fmt.Errorf("rate element not found in XML")
	}

	rate, err := strconv.ParseFloat(strings.TrimSpace(rateElement.Text()), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse rate: %w", err)
	}
	return rate, nil
}

// KeyRate returns the current key rate plus the bank margin. The raw rate
// is cached for the configured TTL; cache failures fall through to CBR.
func (c *CBRClient) KeyRate(ctx context.Context) (float64, error) {
	if raw, ok, err := c.cache.Get(ctx, cacheKey); err != nil {
		c.log.Warnf("Key rate cache read failed: %v", err)
	} else if ok {
		if rate, err := strconv.ParseFloat(raw, 64); err == nil {
			return rate + c.margin, nil
		}
		c.log.Warnf("Ignoring malformed cached key rate %q", raw)
	}

	body, err := c.sendRequest(ctx, c.buildSOAPRequest())
	if err != nil {
		return 0, err
	}
	rate, err := parseXMLResponse(body)
	if err != nil {
		return 0, err
	}

	if err := c.cache.Set(ctx, cacheKey, strconv.FormatFloat(rate, 'f', -1, 64), c.ttl); err != nil {
		c.log.Warnf("Key rate cache write failed: %v", err)
	}

	c.log.WithFields(logrus.Fields{"key_rate": rate, "margin": c.margin}).Info("Retrieved key rate from CBR")
	return rate + c.margin, nil
}
