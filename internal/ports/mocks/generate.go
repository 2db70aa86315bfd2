//go:generate mockgen -source=../state_store.go        -destination=./mock_state_store.go        -package=mocks
//go:generate mockgen -source=../product_cache.go      -destination=./mock_product_cache.go      -package=mocks
//go:generate mockgen -source=../catalog_gateway.go    -destination=./mock_catalog_gateway.go    -package=mocks
//go:generate mockgen -source=../sales_gateway.go      -destination=./mock_sales_gateway.go      -package=mocks
//go:generate mockgen -source=../preference_gateway.go -destination=./mock_preference_gateway.go -package=mocks
//go:generate mockgen -source=../auth_gateway.go       -destination=./mock_auth_gateway.go       -package=mocks

package mocks
