package model

import "time"

// DefaultSalesStage is assigned to clients created without a stage.
const DefaultSalesStage = "LEAD"

// CompanyClient is a business customer tracked through the sales pipeline.
// SalesPipelineStage is free text but never empty.
type CompanyClient struct {
    ID                 string    `json:"id"`
    Name               string    `json:"name"`
    SalesPipelineStage string    `json:"salesPipelineStage"`
    CreatedAt          time.Time `json:"createdAt"`
    UpdatedAt          time.Time `json:"updatedAt"`
}
