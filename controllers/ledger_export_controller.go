package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/tealeg/xlsx"

	"github.com/pointloop/PointLoop/config"
	"github.com/pointloop/PointLoop/models"
	"github.com/pointloop/PointLoop/utils"
)

type activitySummary struct {
	TotalEvents    int
	PointsEarned   int
	PointsRedeemed int
	PointsVoided   int
	NetPoints      int
	TotalCustomers int
}

func activityPeriodRange(period string) (time.Time, time.Time, bool) {
	now := time.Now()
	switch period {
	case "day":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		return start, end, true
	case "week":
		end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		start := end.AddDate(0, 0, -6)
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		return start, end, true
	case "month":
		start := now.AddDate(0, 0, -30).Truncate(24 * time.Hour)
		end := now.Add(24 * time.Hour)
		return start, end, true
	}
	return time.Time{}, time.Time{}, false
}

func fetchActivity(merchantID string, start, end time.Time) ([]models.LedgerEntry, activitySummary, error) {
	var entries []models.LedgerEntry
	err := config.DB.Where("merchant_id = ? AND created_at >= ? AND created_at <= ?", merchantID, start, end).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, activitySummary{}, err
	}

	var summary activitySummary
	customerSet := make(map[string]bool)
	for _, entry := range entries {
		summary.TotalEvents++
		summary.NetPoints += entry.PointsDelta
		customerSet[entry.CustomerID] = true
		switch entry.EventType {
		case models.LedgerEventEarn:
			summary.PointsEarned += entry.PointsDelta
		case models.LedgerEventRedeem:
			summary.PointsRedeemed += -entry.PointsDelta
		case models.LedgerEventVoidEarn:
			summary.PointsVoided += -entry.PointsDelta
		}
	}
	summary.TotalCustomers = len(customerSet)
	return entries, summary, nil
}

// Vendor: download points activity report as Excel
func DownloadActivityReportExcel(c *gin.Context) {
	utils.LogInfo("DownloadActivityReportExcel called")

	storeVal, exists := c.Get("store")
	if !exists {
		utils.Unauthorized(c, "Store not found")
		return
	}
	store := storeVal.(models.Store)

	period := c.DefaultQuery("period", "day")
	startDate, endDate, ok := activityPeriodRange(period)
	if !ok {
		utils.LogError("Invalid period specified: %s", period)
		utils.BadRequest(c, "Invalid period", "Period must be day, week, or month")
		return
	}

	entries, summary, err := fetchActivity(store.MerchantID, startDate, endDate)
	if err != nil {
		utils.LogError("Failed to fetch ledger entries: %v", err)
		utils.InternalServerError(c, "Failed to fetch ledger entries", err.Error())
		return
	}
	utils.LogDebug("Retrieved %d ledger entries for Excel report", len(entries))

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Points Activity")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", err.Error())
		return
	}

	titleRow := sheet.AddRow()
	titleRow.AddCell().SetString("POINTLOOP - Points Activity Report")
	titleRow = sheet.AddRow()
	titleRow.AddCell().SetString("Merchant: " + store.MerchantID)
	titleRow = sheet.AddRow()
	titleRow.AddCell().SetString("Store: " + store.Name)
	titleRow = sheet.AddRow()
	titleRow.AddCell().SetString("Period: " + strings.ToUpper(period) + " | " + startDate.Format("2006-01-02") + " to " + endDate.Format("2006-01-02"))
	sheet.AddRow() // spacing

	headers := []string{"Ledger ID", "Customer ID", "Event", "Points", "Token ID", "Redemption ID", "Date", "Note"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		cell := headerRow.AddCell()
		cell.SetString(h)
		style := xlsx.NewStyle()
		font := xlsx.DefaultFont()
		font.Bold = true
		style.Font = *font
		cell.SetStyle(style)
	}

	for _, entry := range entries {
		row := sheet.AddRow()
		row.AddCell().SetString(entry.LedgerID)
		row.AddCell().SetString(entry.CustomerID)
		row.AddCell().SetString(entry.EventType)
		row.AddCell().SetInt(entry.PointsDelta)
		if entry.TokenID != nil {
			row.AddCell().SetString(*entry.TokenID)
		} else {
			row.AddCell().SetString("")
		}
		if entry.RedemptionID != nil {
			row.AddCell().SetString(*entry.RedemptionID)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(entry.CreatedAt.Format("2006-01-02 15:04"))
		row.AddCell().SetString(entry.Note)
	}

	sheet.AddRow() // spacing

	summaryRow := sheet.AddRow()
	summaryRow.AddCell().SetString("Summary")
	style := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	style.Font = *font
	summaryRow.Cells[0].SetStyle(style)

	summaryData := [][]string{
		{"Total Events", fmt.Sprintf("%d", summary.TotalEvents)},
		{"Points Earned", fmt.Sprintf("%d", summary.PointsEarned)},
		{"Points Redeemed", fmt.Sprintf("%d", summary.PointsRedeemed)},
		{"Points Voided", fmt.Sprintf("%d", summary.PointsVoided)},
		{"Net Points", fmt.Sprintf("%d", summary.NetPoints)},
		{"Customers", fmt.Sprintf("%d", summary.TotalCustomers)},
	}
	for _, data := range summaryData {
		row := sheet.AddRow()
		row.AddCell().SetString(data[0])
		row.AddCell().SetString(data[1])
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=points_activity_%s.xlsx", period))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to write Excel file", err.Error())
		return
	}
	utils.LogInfo("Generated Excel activity report for period %s", period)
}

// Vendor: download points activity report as PDF
func DownloadActivityReportPDF(c *gin.Context) {
	utils.LogInfo("DownloadActivityReportPDF called")

	storeVal, exists := c.Get("store")
	if !exists {
		utils.Unauthorized(c, "Store not found")
		return
	}
	store := storeVal.(models.Store)

	period := c.DefaultQuery("period", "day")
	startDate, endDate, ok := activityPeriodRange(period)
	if !ok {
		utils.LogError("Invalid period specified: %s", period)
		utils.BadRequest(c, "Invalid period", "Period must be day, week, or month")
		return
	}

	entries, summary, err := fetchActivity(store.MerchantID, startDate, endDate)
	if err != nil {
		utils.LogError("Failed to fetch ledger entries: %v", err)
		utils.InternalServerError(c, "Failed to fetch ledger entries", err.Error())
		return
	}
	utils.LogDebug("Retrieved %d ledger entries for PDF report", len(entries))

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 12, "POINTLOOP - Points Activity Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, "Merchant: "+store.MerchantID)
	pdf.Ln(6)
	pdf.Cell(0, 8, "Store: "+store.Name)
	pdf.Ln(6)
	pdf.Cell(0, 8, "Period: "+strings.ToUpper(period)+" | "+startDate.Format("2006-01-02")+" to "+endDate.Format("2006-01-02"))
	pdf.Ln(10)

	headers := []string{"Customer ID", "Event", "Points", "Date", "Note"}
	colWidths := []float64{70, 30, 20, 40, 110}
	pdf.SetFont("Arial", "B", 11)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 8, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, entry := range entries {
		pdf.CellFormat(colWidths[0], 7, entry.CustomerID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 7, entry.EventType, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[2], 7, fmt.Sprintf("%d", entry.PointsDelta), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[3], 7, entry.CreatedAt.Format("2006-01-02 15:04"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[4], 7, entry.Note, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	summaryLines := []string{
		fmt.Sprintf("Total Events: %d", summary.TotalEvents),
		fmt.Sprintf("Points Earned: %d", summary.PointsEarned),
		fmt.Sprintf("Points Redeemed: %d", summary.PointsRedeemed),
		fmt.Sprintf("Points Voided: %d", summary.PointsVoided),
		fmt.Sprintf("Net Points: %d", summary.NetPoints),
		fmt.Sprintf("Customers: %d", summary.TotalCustomers),
	}
	for _, line := range summaryLines {
		pdf.Cell(0, 7, line)
		pdf.Ln(6)
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=points_activity_%s.pdf", period))
	if err := pdf.Output(c.Writer); err != nil {
		utils.LogError("Failed to write PDF file: %v", err)
		utils.InternalServerError(c, "Failed to write PDF file", err.Error())
		return
	}
	utils.LogInfo("Generated PDF activity report for period %s", period)
}
