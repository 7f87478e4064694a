package utils_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID             int
	OrganizationId string
	Name           string
	Status         string
}

func (widget) TableName() string { return "widgets" }

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	conn, err := gorm.Open(gormmysql.New(gormmysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	previous := config.GetDB()
	config.SetDB(conn)
	t.Cleanup(func() {
		config.SetDB(previous)
		_ = sqlDB.Close()
	})
	return conn, mock
}

func dryRun(conn *gorm.DB, preds utils.Predicates) *gorm.Statement {
	var rows []widget
	return conn.Session(&gorm.Session{DryRun: true}).Model(&widget{}).Clauses(preds.Where()).Find(&rows).Statement
}

func TestTenantScopeDropsNilOptionals(t *testing.T) {
	conn, _ := newMockDB(t)

	status := "open"
	var missing *string
	stmt := dryRun(conn, utils.TenantScope("widgets", "org-a").With(
		utils.OptionalEq("widgets", "status", &status),
		utils.OptionalEq("widgets", "name", missing),
		utils.OptionalGte[int]("widgets", "id", nil),
	))
	assert.Equal(t, "SELECT * FROM `widgets` WHERE `widgets`.`organization_id` = ? AND `widgets`.`status` = ?", stmt.SQL.String())
	assert.Equal(t, []interface{}{"org-a", "open"}, stmt.Vars)
}

func TestOptionalFiltersCombineWithAnd(t *testing.T) {
	conn, _ := newMockDB(t)

	status := "open"
	search := "mango"
	low, high := 3, 9
	stmt := dryRun(conn, utils.TenantScope("widgets", "org-a").With(
		utils.OptionalEq("widgets", "status", &status),
		utils.OptionalGte("widgets", "id", &low),
		utils.OptionalLte("widgets", "id", &high),
		utils.OptionalLike("widgets", &search, "name", "status"),
	))
	sql := stmt.SQL.String()
	assert.Contains(t, sql, "`widgets`.`organization_id` = ?")
	assert.Contains(t, sql, "`widgets`.`id` >= ?")
	assert.Contains(t, sql, "`widgets`.`id` <= ?")
	assert.Contains(t, sql, "`widgets`.`name` LIKE ? ESCAPE '!' OR `widgets`.`status` LIKE ? ESCAPE '!'")
	assert.Equal(t, []interface{}{"org-a", "open", 3, 9, "%mango%", "%mango%"}, stmt.Vars)
}

func TestOptionalLikeEscapesWildcards(t *testing.T) {
	conn, _ := newMockDB(t)

	search := "50%_off!"
	stmt := dryRun(conn, utils.TenantScope("widgets", "org-a").With(
		utils.OptionalLike("widgets", &search, "name"),
	))
	assert.Equal(t, []interface{}{"org-a", "%50!%!_off!!%"}, stmt.Vars)
	assert.Nil(t, utils.OptionalLike("widgets", utils.Ptr(""), "name"))
}

func TestWithDoesNotShareBackingArray(t *testing.T) {
	base := utils.TenantScope("widgets", "org-a")
	first := base.With(utils.OptionalEq("widgets", "status", utils.Ptr("open")))
	second := base.With(utils.OptionalEq("widgets", "status", utils.Ptr("closed")))

	assert.Len(t, base, 1)
	require.Len(t, first, 2)
	require.Len(t, second, 2)
	assert.NotEqual(t, first[1], second[1])
}

func TestByIdScopesToOrganization(t *testing.T) {
	conn, _ := newMockDB(t)

	stmt := dryRun(conn, utils.ById("widgets", "org-a", 7))
	assert.Equal(t, "SELECT * FROM `widgets` WHERE `widgets`.`organization_id` = ? AND `widgets`.`id` = ?", stmt.SQL.String())
	assert.Equal(t, []interface{}{"org-a", 7}, stmt.Vars)
}

func TestUpdateScopedWrongTenantIsNotFound(t *testing.T) {
	_, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `widgets` SET `name`=? WHERE `widgets`.`organization_id` = ? AND `widgets`.`id` = ?")).
		WithArgs("renamed", "org-b", 7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `widgets` WHERE `widgets`.`organization_id` = ? AND `widgets`.`id` = ?")).
		WithArgs("org-b", 7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := utils.UpdateScoped[widget](context.Background(), "org-b", 7, map[string]interface{}{"name": "renamed"})
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionScopedGuardsTheUpdate(t *testing.T) {
	_, mock := newMockDB(t)

	// a row already moved by another writer matches nothing; no count query follows
	mock.ExpectExec("UPDATE `widgets` SET `status`=\\? WHERE .*`widgets`.`id` = \\? AND .*`widgets`.`status` <> \\? OR `widgets`.`status` IS NULL").
		WithArgs("closed", "org-a", 7, "closed").
		WillReturnResult(sqlmock.NewResult(0, 0))
	changed, err := utils.TransitionScoped[widget](context.Background(), "org-a", 7,
		map[string]interface{}{"status": "closed"}, utils.NotEqualOrNull("widgets", "status", "closed"))
	require.NoError(t, err)
	assert.False(t, changed)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `widgets` SET `status`=?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	changed, err = utils.TransitionScoped[widget](context.Background(), "org-a", 8,
		map[string]interface{}{"status": "closed"}, utils.NotEqualOrNull("widgets", "status", "closed"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = utils.TransitionScoped[widget](context.Background(), "", 7, map[string]interface{}{"status": "closed"})
	assert.ErrorIs(t, err, utils.ErrorOrganizationRequired)
}

func TestUpdateScopedUnchangedRowIsNotAnError(t *testing.T) {
	_, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `widgets` SET `name`=?")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `widgets`")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := utils.UpdateScoped[widget](context.Background(), "org-a", 7, map[string]interface{}{"name": "same"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteScopedRequiresOrganization(t *testing.T) {
	_, mock := newMockDB(t)

	err := utils.DeleteScoped[widget](context.Background(), "", 7)
	assert.ErrorIs(t, err, utils.ErrorOrganizationRequired)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `widgets` WHERE `widgets`.`organization_id` = ? AND `widgets`.`id` = ?")).
		WithArgs("org-b", 7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = utils.DeleteScoped[widget](context.Background(), "org-b", 7)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
