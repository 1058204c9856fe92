// Package dataset generates the deterministic synthetic corpus and query set
// the benchmark runs against. The same size always yields the same documents,
// so runs are comparable across configurations.
package dataset

import (
	"fmt"
	"strconv"

	"github.com/searchroi/search-roi/internal/backend"
	"github.com/searchroi/search-roi/internal/evaluation"
)

var categories = []string{
	"Technical Documentation",
	"Product Specifications",
	"Customer Support",
	"Knowledge Base",
	"API Documentation",
}

type product struct {
	partNumber  string
	description string
}

var products = []product{
	{"Widget-A-2000", "High-performance widget with advanced features"},
	{"Component-B-X100", "Industrial-grade component for heavy-duty applications"},
	{"Module-C-Pro", "Modular system with extensible architecture"},
	{"Sensor-D-Ultra", "High-precision sensor with real-time monitoring"},
	{"Controller-E-Max", "Intelligent controller with AI capabilities"},
}

// GenerateDocuments produces size synthetic product documents.
func GenerateDocuments(size int) []backend.Document {
	docs := make([]backend.Document, 0, size)

	for i := 0; i < size; i++ {
		p := products[i%len(products)]
		category := categories[i%len(categories)]
		sku := fmt.Sprintf("SKU-%06d", i+1)

		docs = append(docs, backend.Document{
			ID:       fmt.Sprintf("DOC-%04d", i+1),
			Title:    fmt.Sprintf("%s - %s", p.partNumber, category),
			Content:  documentBody(i, p, category, sku),
			Category: category,
			Metadata: map[string]string{
				"sku":         sku,
				"part_number": p.partNumber,
				"price":       strconv.Itoa(100 + i*10),
				"in_stock":    strconv.FormatBool(i%3 != 0),
			},
		})
	}

	return docs
}

func documentBody(i int, p product, category, sku string) string {
	return fmt.Sprintf(`%s Overview:

%s

Part Number: %s
Category: %s
SKU: %s

Technical Specifications:
- Operating Temperature: -40C to 85C
- Power Consumption: %dW
- Dimensions: %dmm x %dmm x %dmm
- Weight: %dg
- Warranty: %d years

Features:
- Advanced signal processing
- Low power consumption
- High reliability and durability
- Easy installation and maintenance
- Compatible with industry standards

Applications:
This product is suitable for industrial automation, manufacturing processes,
quality control systems, and monitoring applications. It provides reliable
performance in demanding environments and integrates seamlessly with existing
infrastructure.

Documentation:
For detailed technical specifications, please refer to the complete documentation.
Installation guides and troubleshooting tips are available in the knowledge base.
For customer support, contact our technical team.`,
		p.partNumber, p.description, p.partNumber, category, sku,
		5+i%20, 10+i%50, 20+i%30, 5+i%15, 100+i%500, 1+i%5)
}

// GenerateQueries produces count test queries mixing exact part-number and
// SKU lookups (where the lexical backend shines) with natural-language and
// specification questions (where the vector backend shines).
func GenerateQueries(count int) []evaluation.TestQuery {
	queries := make([]evaluation.TestQuery, 0, count)

	for _, p := range products {
		queries = append(queries,
			evaluation.TestQuery{
				Query:    fmt.Sprintf("Find %s", p.partNumber),
				Expected: fmt.Sprintf("Technical information about %s", p.partNumber),
			},
			evaluation.TestQuery{
				Query:    fmt.Sprintf("What is %s?", p.partNumber),
				Expected: fmt.Sprintf("Product overview and specifications for %s", p.partNumber),
			},
		)
	}

	for i := 0; i < 10; i++ {
		sku := fmt.Sprintf("SKU-%06d", i*10+1)
		queries = append(queries, evaluation.TestQuery{
			Query:    sku,
			Expected: fmt.Sprintf("Product with %s", sku),
		})
	}

	naturalLanguage := []evaluation.TestQuery{
		{Query: "How do I install the widget?", Expected: "Installation instructions and setup guide"},
		{Query: "What are the power requirements?", Expected: "Power consumption specifications"},
		{Query: "Temperature specifications?", Expected: "Operating temperature range"},
		{Query: "What is the warranty period?", Expected: "Warranty information"},
		{Query: "Which products are suitable for industrial use?", Expected: "Industrial-grade products"},
		{Query: "How to troubleshoot connection issues?", Expected: "Troubleshooting guide"},
		{Query: "What are the dimensions?", Expected: "Physical dimensions and size"},
		{Query: "Compatible products?", Expected: "Compatibility information"},
		{Query: "How much does it weigh?", Expected: "Weight specifications"},
		{Query: "What features are available?", Expected: "Product features and capabilities"},
	}
	queries = append(queries, naturalLanguage...)

	specification := []evaluation.TestQuery{
		{Query: "high temperature operation", Expected: "Products with high temperature range"},
		{Query: "low power consumption", Expected: "Energy-efficient products"},
		{Query: "compact size", Expected: "Small form factor products"},
		{Query: "heavy duty applications", Expected: "Industrial-grade components"},
		{Query: "real-time monitoring", Expected: "Products with monitoring capabilities"},
	}
	queries = append(queries, specification...)

	for _, category := range categories {
		queries = append(queries, evaluation.TestQuery{
			Query:    fmt.Sprintf("Show me all %s", category),
			Expected: fmt.Sprintf("Documents in %s category", category),
		})
	}

	mixed := []evaluation.TestQuery{
		{Query: "widget specifications and features", Expected: "Widget product specifications"},
		{Query: "component installation guide", Expected: "Installation documentation for components"},
		{Query: "sensor technical documentation", Expected: "Technical docs for sensors"},
		{Query: "controller API reference", Expected: "API documentation for controllers"},
		{Query: "module troubleshooting", Expected: "Troubleshooting guides for modules"},
	}
	queries = append(queries, mixed...)

	for len(queries) < count {
		queries = append(queries, evaluation.TestQuery{
			Query:    fmt.Sprintf("General query about product %d", len(queries)),
			Expected: "General product information",
		})
	}

	return queries[:count]
}
